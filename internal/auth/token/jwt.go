package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/obs"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

type JWTConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	TokenType  string
	Keys       Keys
	Leeway     time.Duration
}

// JWTManager issues HS256 signed tokens. Verification is local except for
// two store lookups: the raw-token blacklist and the per-user security
// version counter, which together give single-token and whole-user
// revocation.
type JWTManager struct {
	kv       kvx.Store
	source   AuthInfoSource
	signer   jwtx.Signer
	verifier jwtx.Verifier
	cfg      JWTConfig
	now      func() time.Time
}

var _ Manager = (*JWTManager)(nil)

func NewJWTManager(kv kvx.Store, source AuthInfoSource, cfg JWTConfig) (*JWTManager, error) {
	if kv == nil {
		return nil, errors.New("token: nil key-value store")
	}
	if source == nil {
		return nil, errors.New("token: nil auth info source")
	}

	signer, err := jwtx.NewHS256Signer(cfg.Secret)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewHS256Verifier(cfg.Secret, jwtx.VerifyOptions{Issuer: cfg.Issuer, Leeway: cfg.Leeway})
	if err != nil {
		return nil, err
	}

	cfg.AccessTTL = orDefault(cfg.AccessTTL, jwtx.DefaultAccessTokenTTL)
	cfg.RefreshTTL = orDefault(cfg.RefreshTTL, jwtx.DefaultRefreshTokenTTL)
	if cfg.TokenType == "" {
		cfg.TokenType = DefaultTokenType
	}
	cfg.Keys = cfg.Keys.withDefaults()

	return &JWTManager{
		kv:       kv,
		source:   source,
		signer:   signer,
		verifier: verifier,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

func (m *JWTManager) GenerateToken(ctx context.Context, info domain.UserAuthInfo) (domain.AuthenticationToken, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate the subject
	if info.UserID <= 0 {
		return domain.AuthenticationToken{}, ErrInvalidUserID
	}

	// 2. Read or initialise the security version
	version, err := m.issueVersion(ctx, info.UserID)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}

	// 3. Build and sign both claim sets
	now := m.now()

	access := jwtx.NewClaims(jwtx.TokenTypeAccess, m.cfg.Issuer, info.UserID, version, m.cfg.AccessTTL, now)
	access.DeptID = info.DeptID
	access.DataScopes = toScopeClaims(info.DataScopes)
	access.Authorities = info.Authorities

	refresh := jwtx.NewClaims(jwtx.TokenTypeRefresh, m.cfg.Issuer, info.UserID, version, m.cfg.RefreshTTL, now)

	accessToken, err := m.signer.Sign(access)
	if err != nil {
		return domain.AuthenticationToken{}, fmt.Errorf("token: sign access token: %w", err)
	}
	refreshToken, err := m.signer.Sign(refresh)
	if err != nil {
		return domain.AuthenticationToken{}, fmt.Errorf("token: sign refresh token: %w", err)
	}

	// 4. Swap the per-user pointers, then blacklist whatever they held
	userAccessKey := kvx.Key(m.cfg.Keys.UserAccess, info.UserID)
	userRefreshKey := kvx.Key(m.cfg.Keys.UserRefresh, info.UserID)

	oldAccess, err := getOptional(ctx, m.kv, userAccessKey)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}
	oldRefresh, err := getOptional(ctx, m.kv, userRefreshKey)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}

	if err := m.kv.SetEX(ctx, userAccessKey, accessToken, m.cfg.AccessTTL); err != nil {
		return domain.AuthenticationToken{}, err
	}
	if err := m.kv.SetEX(ctx, userRefreshKey, refreshToken, m.cfg.RefreshTTL); err != nil {
		return domain.AuthenticationToken{}, err
	}

	if oldAccess != "" {
		if err := m.blacklist(ctx, oldAccess, m.cfg.AccessTTL); err != nil {
			return domain.AuthenticationToken{}, err
		}
	}
	if oldRefresh != "" {
		if err := m.blacklist(ctx, oldRefresh, m.cfg.RefreshTTL); err != nil {
			return domain.AuthenticationToken{}, err
		}
	}

	obs.TokensIssued.WithLabelValues(ModeJWT).Inc()
	l.Debug("issued token pair",
		slog.Int64("user_id", info.UserID),
		slog.Int64("security_version", version),
		slog.Bool("superseded", oldAccess != "" || oldRefresh != ""),
	)

	return domain.AuthenticationToken{
		TokenType:    m.cfg.TokenType,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.cfg.AccessTTL / time.Second),
	}, nil
}

func (m *JWTManager) ParseAccessToken(ctx context.Context, accessToken string) (domain.UserAuthInfo, error) {
	claims, reason, err := m.decode(ctx, accessToken, true)
	if err != nil {
		return domain.UserAuthInfo{}, err
	}
	if reason == "" && claims.TokenType != jwtx.TokenTypeAccess {
		reason = "wrong token type"
	}
	if reason != "" {
		return domain.UserAuthInfo{}, reject(ctx, ErrAccessTokenInvalid, reason, accessToken)
	}

	return domain.UserAuthInfo{
		UserID:      claims.UserID,
		DeptID:      claims.DeptID,
		DataScopes:  fromScopeClaims(claims.DataScopes),
		Authorities: claims.Authorities,
		AccessToken: accessToken,
	}, nil
}

// RefreshToken rotates the pair. Department, scopes and authorities come
// from the source, never from the old token.
func (m *JWTManager) RefreshToken(ctx context.Context, refreshToken string) (domain.AuthenticationToken, error) {
	claims, reason, err := m.decode(ctx, refreshToken, true)
	if err != nil {
		return domain.AuthenticationToken{}, err
	}
	if reason == "" && claims.TokenType != jwtx.TokenTypeRefresh {
		reason = "wrong token type"
	}
	if reason != "" {
		return domain.AuthenticationToken{}, reject(ctx, ErrRefreshTokenInvalid, reason, refreshToken)
	}

	info, err := m.source.Load(ctx, claims.UserID)
	if errors.Is(err, ErrSubjectGone) {
		return domain.AuthenticationToken{}, reject(ctx, ErrRefreshTokenInvalid, "subject gone", refreshToken)
	}
	if err != nil {
		return domain.AuthenticationToken{}, err
	}
	info.UserID = claims.UserID
	info.AccessToken = ""

	return m.GenerateToken(ctx, info)
}

func (m *JWTManager) Invalidate(ctx context.Context, accessToken, refreshToken string) error {
	l := slogx.FromContext(ctx)

	if accessToken != "" {
		claims, reason, err := m.decode(ctx, accessToken, false)
		if err != nil {
			return err
		}
		if reason == "" {
			if err := m.bumpVersion(ctx, claims.UserID); err != nil {
				return err
			}
			l.Info("security version bumped", slog.Int64("user_id", claims.UserID))
		} else {
			l.Debug("invalidate could not resolve user", slog.String("reason", reason))
		}
	}

	for _, raw := range []string{accessToken, refreshToken} {
		if raw == "" {
			continue
		}
		if err := m.blacklist(ctx, raw, invalidateWindow); err != nil {
			return err
		}
	}

	return nil
}

func (m *JWTManager) RevokeUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	return m.bumpVersion(ctx, userID)
}

// decode verifies raw and checks it against the store. A non-empty reason
// means the token is rejected; err is reserved for store failures.
func (m *JWTManager) decode(ctx context.Context, raw string, checkBlacklist bool) (jwtx.Claims, string, error) {
	if raw == "" {
		return jwtx.Claims{}, "empty token", nil
	}

	if checkBlacklist {
		listed, err := m.kv.Exists(ctx, kvx.Key(m.cfg.Keys.Blacklist, raw))
		if err != nil {
			return jwtx.Claims{}, "", err
		}
		if listed {
			return jwtx.Claims{}, "blacklisted", nil
		}
	}

	claims, err := m.verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, err.Error(), nil
	}

	current, err := m.currentVersion(ctx, claims.UserID)
	if err != nil {
		return jwtx.Claims{}, "", err
	}
	if claims.SecurityVersion < current {
		return jwtx.Claims{}, "stale security version", nil
	}

	return claims, "", nil
}

// issueVersion returns the counter, creating it at 1 on first issuance.
func (m *JWTManager) issueVersion(ctx context.Context, userID int64) (int64, error) {
	v, present, err := m.readVersion(ctx, userID)
	if err != nil || present {
		return v, err
	}

	if err := m.kv.Set(ctx, kvx.Key(m.cfg.Keys.SecurityVersion, userID), strconv.FormatInt(v, 10)); err != nil {
		return 0, err
	}
	return v, nil
}

func (m *JWTManager) currentVersion(ctx context.Context, userID int64) (int64, error) {
	v, _, err := m.readVersion(ctx, userID)
	return v, err
}

// readVersion reads the counter. An absent or non-positive value counts as 1.
func (m *JWTManager) readVersion(ctx context.Context, userID int64) (int64, bool, error) {
	raw, err := getOptional(ctx, m.kv, kvx.Key(m.cfg.Keys.SecurityVersion, userID))
	if err != nil {
		return 0, false, err
	}
	if raw == "" {
		return 1, false, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("token: corrupt security version for user %d: %w", userID, err)
	}
	return max(v, 1), true, nil
}

// bumpVersion atomically increments the counter. The baseline is 1, so an
// increment that lands on 1 (key was absent) goes once more.
func (m *JWTManager) bumpVersion(ctx context.Context, userID int64) error {
	key := kvx.Key(m.cfg.Keys.SecurityVersion, userID)

	v, err := m.kv.Incr(ctx, key)
	if err != nil {
		return err
	}
	if v <= 1 {
		_, err = m.kv.Incr(ctx, key)
	}
	return err
}

func (m *JWTManager) blacklist(ctx context.Context, raw string, ttl time.Duration) error {
	return m.kv.SetEX(ctx, kvx.Key(m.cfg.Keys.Blacklist, raw), "1", max(ttl, blacklistFloor))
}

func getOptional(ctx context.Context, kv kvx.Store, key string) (string, error) {
	v, err := kv.Get(ctx, key)
	if errors.Is(err, kvx.ErrNil) {
		return "", nil
	}
	return v, err
}

// reject logs and counts a refused token and returns the sentinel.
func reject(ctx context.Context, sentinel error, reason, raw string) error {
	kind := "access"
	if errors.Is(sentinel, ErrRefreshTokenInvalid) {
		kind = "refresh"
	}
	obs.TokenRejections.WithLabelValues(kind).Inc()

	slogx.FromContext(ctx).Warn("token rejected",
		slog.String("kind", kind),
		slog.String("reason", reason),
		slog.String("fp", cryptox.FingerprintToken(raw)),
	)
	return sentinel
}

func toScopeClaims(scopes []domain.RoleDataScope) []jwtx.ScopeClaim {
	if len(scopes) == 0 {
		return nil
	}
	out := make([]jwtx.ScopeClaim, len(scopes))
	for i, s := range scopes {
		s = s.Normalize()
		out[i] = jwtx.ScopeClaim{RoleCode: s.RoleCode, DataScope: int(s.DataScope), CustomDeptIDs: s.CustomDeptIDs}
	}
	return out
}

func fromScopeClaims(claims []jwtx.ScopeClaim) []domain.RoleDataScope {
	if len(claims) == 0 {
		return nil
	}
	out := make([]domain.RoleDataScope, len(claims))
	for i, c := range claims {
		out[i] = domain.RoleDataScope{
			RoleCode:      c.RoleCode,
			DataScope:     domain.DataScope(c.DataScope),
			CustomDeptIDs: c.CustomDeptIDs,
		}.Normalize()
	}
	return out
}
