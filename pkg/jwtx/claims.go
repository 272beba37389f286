package jwtx

import (
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes, overridable through configuration.
const (
	DefaultAccessTokenTTL  = 2 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token type discriminators carried in the "tokenType" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ScopeClaim is the wire form of one role's data scope.
type ScopeClaim struct {
	RoleCode      string  `json:"roleCode"`
	DataScope     int     `json:"dataScope"`
	CustomDeptIDs []int64 `json:"customDeptIds,omitempty"`
}

// Claims is the fixed claim set of access and refresh tokens. Refresh tokens
// only carry the identity and version fields.
type Claims struct {
	jwt.RegisteredClaims

	TokenType       string       `json:"tokenType"`
	UserID          int64        `json:"userId"`
	DeptID          *int64       `json:"deptId,omitempty"`
	DataScopes      []ScopeClaim `json:"dataScopes,omitempty"`
	Authorities     []string     `json:"authorities,omitempty"`
	SecurityVersion int64        `json:"securityVersion"`
}

// NewClaims fills the registered claims for a token of the given type. Every
// call gets a fresh jti, so two tokens minted in the same second with the same
// payload still differ.
func NewClaims(tokenType, issuer string, userID, securityVersion int64, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType:       tokenType,
		UserID:          userID,
		SecurityVersion: securityVersion,
	}
}

// NewJTI returns a unique identifier for the "jti" claim.
func NewJTI() string {
	return idx.New().String()
}

// Validate checks the presence and shape of every claim we depend on. The
// signature alone says nothing about whether the payload is well formed.
// Data scope values pass through untouched; consumers treat unknown values
// as the most restrictive scope.
func (c *Claims) Validate() error {
	switch {
	case c.TokenType != TokenTypeAccess && c.TokenType != TokenTypeRefresh:
		return ErrInvalidClaim
	case c.UserID <= 0:
		return ErrInvalidClaim
	case c.SecurityVersion <= 0:
		return ErrInvalidClaim
	case c.ExpiresAt == nil || c.IssuedAt == nil:
		return ErrInvalidClaim
	case c.ID == "":
		return ErrInvalidClaim
	}

	return nil
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// Remaining returns how long until the token expires, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}
