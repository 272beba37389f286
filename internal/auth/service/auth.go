package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/obs"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/internal/auth/token"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// MinPasswordLength applies to new passwords.
const MinPasswordLength = 6

var (
	ErrAccountNotFound = errors.New("service: account not found")
	ErrAccountFrozen   = errors.New("service: account frozen")
	ErrBadCredentials  = errors.New("service: bad credentials")
	ErrInvalidInput    = errors.New("service: invalid input")
)

// AuthService drives login, refresh, logout and password changes on top of
// whichever token.Manager the resolver picked.
type AuthService struct {
	Store  store.Store
	Tokens token.Manager
	Loader *AuthInfoLoader
	Online *OnlineUsers // optional
}

// Login checks the account and password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.AuthenticationToken, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		obs.Logins.WithLabelValues("invalid_input").Inc()
		return domain.AuthenticationToken{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	// 1. Account must exist and be live
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.Logins.WithLabelValues("not_found").Inc()
			l.Info("login for unknown account", slog.String("username", username))
			return domain.AuthenticationToken{}, ErrAccountNotFound
		}
		obs.Logins.WithLabelValues("error").Inc()
		return domain.AuthenticationToken{}, err
	}

	// 2. Account must be enabled
	if user.Status != domain.UserStatusActive {
		obs.Logins.WithLabelValues("frozen").Inc()
		l.Info("login for frozen account", slog.Int64("user_id", user.ID))
		return domain.AuthenticationToken{}, ErrAccountFrozen
	}

	// 3. Password
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		obs.Logins.WithLabelValues("bad_credentials").Inc()
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
		return domain.AuthenticationToken{}, ErrBadCredentials
	}

	// 4. Materialize identity and issue
	info, err := s.Loader.infoFor(ctx, user)
	if err != nil {
		obs.Logins.WithLabelValues("error").Inc()
		return domain.AuthenticationToken{}, err
	}

	tok, err := s.Tokens.GenerateToken(ctx, info)
	if err != nil {
		obs.Logins.WithLabelValues("error").Inc()
		return domain.AuthenticationToken{}, err
	}

	// 5. Online registry is best effort
	if s.Online != nil {
		if err := s.Online.Record(ctx, user.ID); err != nil {
			l.Warn("failed to record online user", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}

	obs.Logins.WithLabelValues("success").Inc()
	l.Info("user logged in", slog.Int64("user_id", user.ID))
	return tok, nil
}

// Refresh exchanges a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.AuthenticationToken, error) {
	return s.Tokens.RefreshToken(ctx, strings.TrimSpace(refreshToken))
}

// Logout revokes the presented tokens. Garbage tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var userID int64
	if accessToken != "" {
		if info, err := s.Tokens.ParseAccessToken(ctx, accessToken); err == nil {
			userID = info.UserID
		}
	}

	if err := s.Tokens.Invalidate(ctx, accessToken, refreshToken); err != nil {
		return err
	}

	if userID > 0 && s.Online != nil {
		if err := s.Online.Remove(ctx, userID); err != nil {
			slogx.FromContext(ctx).Warn("failed to remove online user",
				slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}
	return nil
}

// ChangePassword replaces the user's password and revokes every token the
// user holds.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	l := slogx.FromContext(ctx)

	// 1. Validate input
	switch {
	case oldPassword == "" || newPassword == "":
		return fmt.Errorf("%w: passwords must not be empty", ErrInvalidInput)
	case len(newPassword) < MinPasswordLength:
		return fmt.Errorf("%w: new password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	case oldPassword == newPassword:
		return fmt.Errorf("%w: new password must differ from the old one", ErrInvalidInput)
	}

	// 2. Verify the current password
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if user.Deleted {
		return ErrAccountNotFound
	}
	if err := cryptox.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
		return ErrBadCredentials
	}

	// 3. Store the new hash
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	// 4. Everything issued before now is dead
	if err := s.Tokens.RevokeUser(ctx, userID); err != nil {
		l.Error("password changed but token revocation failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return err
	}

	l.Info("password changed", slog.Int64("user_id", userID))
	return nil
}
