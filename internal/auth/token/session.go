package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/obs"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

type SessionConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	TokenType  string
	Keys       Keys
}

// SessionManager hands out random opaque tokens and keeps the identity in
// the store. A token is valid exactly as long as its session key exists.
type SessionManager struct {
	kv  kvx.Store
	cfg SessionConfig
}

var _ Manager = (*SessionManager)(nil)

func NewSessionManager(kv kvx.Store, cfg SessionConfig) (*SessionManager, error) {
	if kv == nil {
		return nil, errors.New("token: nil key-value store")
	}

	cfg.AccessTTL = orDefault(cfg.AccessTTL, jwtx.DefaultAccessTokenTTL)
	cfg.RefreshTTL = orDefault(cfg.RefreshTTL, jwtx.DefaultRefreshTokenTTL)
	if cfg.TokenType == "" {
		cfg.TokenType = DefaultTokenType
	}
	cfg.Keys = cfg.Keys.withDefaults()

	return &SessionManager{kv: kv, cfg: cfg}, nil
}

func (m *SessionManager) GenerateToken(ctx context.Context, info domain.UserAuthInfo) (domain.AuthenticationToken, error) {
	l := slogx.FromContext(ctx)

	if info.UserID <= 0 {
		return domain.AuthenticationToken{}, ErrInvalidUserID
	}

	// 1. Drop the sessions behind the user's current pointers
	superseded, err := m.dropCurrent(ctx, info.UserID, false)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}

	// 2. Mint two opaque tokens
	accessToken, err := cryptox.GenerateHexToken(cryptox.TokenSize128)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}
	refreshToken, err := cryptox.GenerateHexToken(cryptox.TokenSize128)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}

	// 3. Store the snapshot under both tokens, then point the user at them
	info.AccessToken = ""
	payload, err := json.Marshal(info)
	if err != nil {
		return domain.AuthenticationToken{}, fmt.Errorf("token: encode session: %w", err)
	}

	writes := []struct {
		key, value string
		ttl        time.Duration
	}{
		{kvx.Key(m.cfg.Keys.AccessSession, accessToken), string(payload), m.cfg.AccessTTL},
		{kvx.Key(m.cfg.Keys.RefreshSession, refreshToken), string(payload), m.cfg.RefreshTTL},
		{kvx.Key(m.cfg.Keys.UserAccess, info.UserID), accessToken, m.cfg.AccessTTL},
		{kvx.Key(m.cfg.Keys.UserRefresh, info.UserID), refreshToken, m.cfg.RefreshTTL},
	}
	for _, w := range writes {
		if err := m.kv.SetEX(ctx, w.key, w.value, w.ttl); err != nil {
			return domain.AuthenticationToken{}, err
		}
	}

	obs.TokensIssued.WithLabelValues(ModeRedisToken).Inc()
	l.Debug("issued session pair", slog.Int64("user_id", info.UserID), slog.Bool("superseded", superseded))

	return domain.AuthenticationToken{
		TokenType:    m.cfg.TokenType,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.cfg.AccessTTL / time.Second),
	}, nil
}

func (m *SessionManager) ParseAccessToken(ctx context.Context, accessToken string) (domain.UserAuthInfo, error) {
	info, reason, err := m.lookup(ctx, m.cfg.Keys.AccessSession, accessToken)
	if err != nil {
		return domain.UserAuthInfo{}, err
	}
	if reason != "" {
		return domain.UserAuthInfo{}, reject(ctx, ErrAccessTokenInvalid, reason, accessToken)
	}

	info.AccessToken = accessToken
	return info, nil
}

// RefreshToken re-issues from the stored snapshot. The presented refresh
// token is spent even if the user has since logged in elsewhere.
func (m *SessionManager) RefreshToken(ctx context.Context, refreshToken string) (domain.AuthenticationToken, error) {
	info, reason, err := m.lookup(ctx, m.cfg.Keys.RefreshSession, refreshToken)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}
	if reason != "" {
		return domain.AuthenticationToken{}, reject(ctx, ErrRefreshTokenInvalid, reason, refreshToken)
	}

	if err := m.kv.Del(ctx, kvx.Key(m.cfg.Keys.RefreshSession, refreshToken)); err != nil {
		return domain.AuthenticationToken{}, err
	}

	return m.GenerateToken(ctx, info)
}

func (m *SessionManager) Invalidate(ctx context.Context, accessToken, refreshToken string) error {
	var keys []string

	if accessToken != "" {
		info, reason, err := m.lookup(ctx, m.cfg.Keys.AccessSession, accessToken)
		if err != nil {
			return err
		}
		if reason == "" {
			keys = append(keys,
				kvx.Key(m.cfg.Keys.UserAccess, info.UserID),
				kvx.Key(m.cfg.Keys.UserRefresh, info.UserID),
			)
		}
		keys = append(keys, kvx.Key(m.cfg.Keys.AccessSession, accessToken))
	}
	if refreshToken != "" {
		keys = append(keys, kvx.Key(m.cfg.Keys.RefreshSession, refreshToken))
	}

	return m.kv.Del(ctx, keys...)
}

func (m *SessionManager) RevokeUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	_, err := m.dropCurrent(ctx, userID, true)
	return err
}

// dropCurrent deletes the sessions the user's pointers name, and the
// pointers themselves when withPointers is set.
func (m *SessionManager) dropCurrent(ctx context.Context, userID int64, withPointers bool) (bool, error) {
	userAccessKey := kvx.Key(m.cfg.Keys.UserAccess, userID)
	userRefreshKey := kvx.Key(m.cfg.Keys.UserRefresh, userID)

	oldAccess, err := getOptional(ctx, m.kv, userAccessKey)
	if err != nil {
		return false, err
	}
	oldRefresh, err := getOptional(ctx, m.kv, userRefreshKey)
	if err != nil {
		return false, err
	}

	var keys []string
	if oldAccess != "" {
		keys = append(keys, kvx.Key(m.cfg.Keys.AccessSession, oldAccess))
	}
	if oldRefresh != "" {
		keys = append(keys, kvx.Key(m.cfg.Keys.RefreshSession, oldRefresh))
	}
	if withPointers {
		keys = append(keys, userAccessKey, userRefreshKey)
	}

	if err := m.kv.Del(ctx, keys...); err != nil {
		return false, err
	}
	return oldAccess != "" || oldRefresh != "", nil
}

// lookup loads the snapshot stored under pattern/token. A non-empty reason
// means the token is rejected; err is reserved for store failures.
func (m *SessionManager) lookup(ctx context.Context, pattern, raw string) (domain.UserAuthInfo, string, error) {
	if raw == "" {
		return domain.UserAuthInfo{}, "empty token", nil
	}

	payload, err := getOptional(ctx, m.kv, kvx.Key(pattern, raw))
	if err != nil {
		return domain.UserAuthInfo{}, "", err
	}
	if payload == "" {
		return domain.UserAuthInfo{}, "no session", nil
	}

	var info domain.UserAuthInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return domain.UserAuthInfo{}, "corrupt session", nil
	}
	if info.UserID <= 0 {
		return domain.UserAuthInfo{}, "corrupt session", nil
	}

	return info, "", nil
}
