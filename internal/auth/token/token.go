// Package token issues, verifies, rotates and revokes the bearer credentials
// handed out at login. Two interchangeable strategies implement Manager: a
// stateless signed-token manager and an opaque server-side session manager.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
)

var (
	ErrAccessTokenInvalid  = errors.New("token: access token invalid")
	ErrRefreshTokenInvalid = errors.New("token: refresh token invalid")
	ErrInvalidUserID       = errors.New("token: Invalid userId")

	// ErrSubjectGone is returned by an AuthInfoSource when the user a
	// refresh token was issued for no longer exists or may not sign in.
	ErrSubjectGone = errors.New("token: subject gone")
)

// Session modes accepted by the resolver.
const (
	ModeJWT        = "jwt"
	ModeRedisToken = "redis-token"
)

const DefaultTokenType = "Bearer"

const (
	blacklistFloor   = 60 * time.Second
	invalidateWindow = 24 * time.Hour
)

// Manager is what the login flow and the auth middleware talk to.
type Manager interface {
	// GenerateToken issues a new access/refresh pair and retires the
	// user's previous pair.
	GenerateToken(ctx context.Context, info domain.UserAuthInfo) (domain.AuthenticationToken, error)

	// ParseAccessToken resolves an access token into the identity it
	// proves. Every rejection is ErrAccessTokenInvalid.
	ParseAccessToken(ctx context.Context, accessToken string) (domain.UserAuthInfo, error)

	// RefreshToken exchanges a refresh token for a fresh pair. Every
	// rejection is ErrRefreshTokenInvalid.
	RefreshToken(ctx context.Context, refreshToken string) (domain.AuthenticationToken, error)

	// Invalidate revokes whichever of the two tokens are non-empty. It
	// never fails because a token is garbage, only when the store does.
	Invalidate(ctx context.Context, accessToken, refreshToken string) error

	// RevokeUser kills every outstanding token of a user, e.g. after a
	// password change.
	RevokeUser(ctx context.Context, userID int64) error
}

// AuthInfoSource reloads a user's current identity from the system of record.
// It returns ErrSubjectGone (possibly wrapped) when the user can no longer
// hold tokens.
type AuthInfoSource interface {
	Load(ctx context.Context, userID int64) (domain.UserAuthInfo, error)
}

// AuthInfoSourceFunc adapts a function to AuthInfoSource.
type AuthInfoSourceFunc func(ctx context.Context, userID int64) (domain.UserAuthInfo, error)

func (f AuthInfoSourceFunc) Load(ctx context.Context, userID int64) (domain.UserAuthInfo, error) {
	return f(ctx, userID)
}

// Keys holds the key templates, each with a single "{}" placeholder.
type Keys struct {
	AccessSession   string // access token -> session payload
	RefreshSession  string // refresh token -> session payload
	UserAccess      string // user id -> current access token
	UserRefresh     string // user id -> current refresh token
	Blacklist       string // raw token -> "1"
	SecurityVersion string // user id -> counter
}

func DefaultKeys() Keys {
	return Keys{
		AccessSession:   "auth:token:access:{}",
		RefreshSession:  "auth:token:refresh:{}",
		UserAccess:      "auth:user:access:{}",
		UserRefresh:     "auth:user:refresh:{}",
		Blacklist:       "auth:token:blacklist:{}",
		SecurityVersion: "auth:user:security_version:{}",
	}
}

// withDefaults fills any empty template from DefaultKeys.
func (k Keys) withDefaults() Keys {
	d := DefaultKeys()
	if k.AccessSession == "" {
		k.AccessSession = d.AccessSession
	}
	if k.RefreshSession == "" {
		k.RefreshSession = d.RefreshSession
	}
	if k.UserAccess == "" {
		k.UserAccess = d.UserAccess
	}
	if k.UserRefresh == "" {
		k.UserRefresh = d.UserRefresh
	}
	if k.Blacklist == "" {
		k.Blacklist = d.Blacklist
	}
	if k.SecurityVersion == "" {
		k.SecurityVersion = d.SecurityVersion
	}
	return k
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
