package domain

import "strings"

// RolePrefix marks role identifiers inside Authorities.
const RolePrefix = "ROLE_"

// SuperAdminRole bypasses every data-scope filter.
const SuperAdminRole = "ROOT"

// AuthenticationToken is what a successful login or refresh hands back.
type AuthenticationToken struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds until the access token expires
}

// UserAuthInfo is the identity a token is issued for and, after parsing, the
// identity it proves. AccessToken only echoes the parsed token back.
type UserAuthInfo struct {
	UserID      int64           `json:"userId"`
	DeptID      *int64          `json:"deptId"`
	DataScopes  []RoleDataScope `json:"dataScopes"`
	Authorities []string        `json:"authorities"`
	AccessToken string          `json:"accessToken,omitempty"`
}

// Roles strips RolePrefix from every authority that carries it.
func (u UserAuthInfo) Roles() []string {
	roles := make([]string, 0, len(u.Authorities))
	for _, a := range u.Authorities {
		if code, ok := strings.CutPrefix(a, RolePrefix); ok && code != "" {
			roles = append(roles, code)
		}
	}
	return roles
}

// RoleAuthority is the inverse of Roles for a single code.
func RoleAuthority(code string) string {
	return RolePrefix + code
}
