package domain

import "time"

// User status values.
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

type User struct {
	ID           int64
	Username     string
	Nickname     string
	Mobile       string
	DeptID       *int64
	PasswordHash string // bcrypt
	Status       int
	Deleted      bool
	CreatedBy    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Active() bool { return u.Status == UserStatusActive && !u.Deleted }

// UserQuery filters a user listing. Zero values mean "no filter".
type UserQuery struct {
	Keywords string // matches username, nickname or mobile
	Status   *int
	DeptID   *int64
	PageNum  int
	PageSize int
}

// Normalize clamps paging to sane values.
func (q UserQuery) Normalize() UserQuery {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = 10
	case q.PageSize > 500:
		q.PageSize = 500
	}
	return q
}

func (q UserQuery) Offset() int { return (q.PageNum - 1) * q.PageSize }

// Page is one page of a listing.
type Page[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
}

// UserView is the listing row returned to clients.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Mobile   string `json:"mobile,omitempty"`
	DeptID   *int64 `json:"deptId"`
	DeptName string `json:"deptName,omitempty"`
	Status   int    `json:"status"`
}

// CurrentUser is the signed-in user's own profile.
type CurrentUser struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Nickname string   `json:"nickname"`
	DeptID   *int64   `json:"deptId"`
	DeptName string   `json:"deptName,omitempty"`
	Roles    []string `json:"roles"`
}

// OnlineUser is one entry of the online registry.
type OnlineUser struct {
	UserID  int64 `json:"userId"`
	LoginAt int64 `json:"loginAt"` // unix millis
}
