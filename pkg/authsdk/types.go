package authsdk

// ============================================================================
// Auth
// ============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is the data of a successful login or refresh.
type TokenResponse struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

type OnlineUser struct {
	UserID  int64 `json:"userId"`
	LoginAt int64 `json:"loginAt"` // unix millis
}

type OnlineUsersResponse struct {
	Count int          `json:"count"`
	Users []OnlineUser `json:"users"`
}

// ============================================================================
// Users
// ============================================================================

type CurrentUser struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Nickname string   `json:"nickname"`
	DeptID   *int64   `json:"deptId"`
	DeptName string   `json:"deptName,omitempty"`
	Roles    []string `json:"roles"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UserQuery filters GET /api/v1/users/page. Zero values are omitted.
type UserQuery struct {
	Keywords string
	Status   *int
	DeptID   *int64
	PageNum  int
	PageSize int
}

type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Mobile   string `json:"mobile,omitempty"`
	DeptID   *int64 `json:"deptId"`
	DeptName string `json:"deptName,omitempty"`
	Status   int    `json:"status"`
}

type UserPage struct {
	List  []UserView `json:"list"`
	Total int64      `json:"total"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned bare, without the result envelope.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
