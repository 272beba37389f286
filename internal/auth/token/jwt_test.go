package token

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newJWTManager(t *testing.T, src fakeSource) (*JWTManager, *miniredis.Miniredis) {
	t.Helper()

	kv, mr := newKV(t)
	m, err := NewJWTManager(kv, src, JWTConfig{Secret: testSecret, Issuer: "backoffice-test"})
	require.NoError(t, err)

	return m, mr
}

func TestNewJWTManager_RejectsWeakSecret(t *testing.T) {
	kv, _ := newKV(t)

	_, err := NewJWTManager(kv, fakeSource{}, JWTConfig{Secret: []byte("short")})
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestJWTManager_GenerateAndParse(t *testing.T) {
	ctx := context.Background()
	m, _ := newJWTManager(t, fakeSource{})
	info := sampleInfo()

	tok, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, int64(7200), tok.ExpiresIn)
	require.Len(t, strings.Split(tok.AccessToken, "."), 3)
	require.NotEqual(t, tok.AccessToken, tok.RefreshToken)

	got, err := m.ParseAccessToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, info.UserID, got.UserID)
	require.Equal(t, info.DeptID, got.DeptID)
	require.Equal(t, info.Authorities, got.Authorities)
	require.Equal(t, info.DataScopes, got.DataScopes)
	require.Equal(t, tok.AccessToken, got.AccessToken)
}

func TestJWTManager_GenerateRejectsInvalidUserID(t *testing.T) {
	m, _ := newJWTManager(t, fakeSource{})

	for _, id := range []int64{0, -3} {
		_, err := m.GenerateToken(context.Background(), domain.UserAuthInfo{UserID: id})
		require.ErrorIs(t, err, ErrInvalidUserID)
	}
}

func TestJWTManager_InitialisesSecurityVersion(t *testing.T) {
	m, mr := newJWTManager(t, fakeSource{})

	_, err := m.GenerateToken(context.Background(), sampleInfo())
	require.NoError(t, err)

	v, err := mr.Get("auth:user:security_version:5")
	require.NoError(t, err)
	require.Equal(t, "1", v)
}

func TestJWTManager_TokenTypesAreNotInterchangeable(t *testing.T) {
	ctx := context.Background()
	info := sampleInfo()
	m, _ := newJWTManager(t, fakeSource{info.UserID: info})

	tok, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(ctx, tok.RefreshToken)
	require.ErrorIs(t, err, ErrAccessTokenInvalid)

	_, err = m.RefreshToken(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestJWTManager_ParseRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	m, _ := newJWTManager(t, fakeSource{})

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.ParseAccessToken(ctx, raw)
		require.ErrorIs(t, err, ErrAccessTokenInvalid, raw)
	}
}

func TestJWTManager_ParseRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	m, _ := newJWTManager(t, fakeSource{})

	other, err := jwtx.NewHS256Signer([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	c := jwtx.NewClaims(jwtx.TokenTypeAccess, "backoffice-test", 5, 1, time.Hour, time.Now())
	forged, err := other.Sign(c)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(ctx, forged)
	require.ErrorIs(t, err, ErrAccessTokenInvalid)
}

func TestJWTManager_InvalidateRejectsBothTokens(t *testing.T) {
	ctx := context.Background()
	info := sampleInfo()
	m, mr := newJWTManager(t, fakeSource{info.UserID: info})

	tok, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)

	require.NoError(t, m.Invalidate(ctx, tok.AccessToken, tok.RefreshToken))

	_, err = m.ParseAccessToken(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrAccessTokenInvalid)
	_, err = m.RefreshToken(ctx, tok.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)

	v, err := mr.Get("auth:user:security_version:5")
	require.NoError(t, err)
	require.Equal(t, "2", v)

	ttl := mr.TTL("auth:token:blacklist:" + tok.AccessToken)
	require.Equal(t, 24*time.Hour, ttl)
}

func TestJWTManager_InvalidateToleratesGarbage(t *testing.T) {
	m, mr := newJWTManager(t, fakeSource{})

	require.NoError(t, m.Invalidate(context.Background(), "", ""))
	require.NoError(t, m.Invalidate(context.Background(), "garbage", "more-garbage"))

	require.True(t, mr.Exists("auth:token:blacklist:garbage"))
	require.True(t, mr.Exists("auth:token:blacklist:more-garbage"))
}

func TestJWTManager_VersionBumpRevokesEarlierTokensOnly(t *testing.T) {
	ctx := context.Background()
	info := sampleInfo()
	m, _ := newJWTManager(t, fakeSource{info.UserID: info})

	before, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)

	require.NoError(t, m.RevokeUser(ctx, info.UserID))

	_, err = m.ParseAccessToken(ctx, before.AccessToken)
	require.ErrorIs(t, err, ErrAccessTokenInvalid)
	_, err = m.RefreshToken(ctx, before.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)

	after, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)

	got, err := m.ParseAccessToken(ctx, after.AccessToken)
	require.NoError(t, err)
	require.Equal(t, info.UserID, got.UserID)
}

func TestJWTManager_RevokeUserWithoutCounter(t *testing.T) {
	m, mr := newJWTManager(t, fakeSource{})

	require.NoError(t, m.RevokeUser(context.Background(), 42))

	v, err := mr.Get("auth:user:security_version:42")
	require.NoError(t, err)
	require.Equal(t, "2", v)
}

func TestJWTManager_SecondLoginSupersedesFirst(t *testing.T) {
	ctx := context.Background()
	info := sampleInfo()
	m, mr := newJWTManager(t, fakeSource{info.UserID: info})

	first, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)
	second, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(ctx, first.AccessToken)
	require.ErrorIs(t, err, ErrAccessTokenInvalid)
	_, err = m.RefreshToken(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)

	_, err = m.ParseAccessToken(ctx, second.AccessToken)
	require.NoError(t, err)

	require.Equal(t, 2*time.Hour, mr.TTL("auth:token:blacklist:"+first.AccessToken))
	require.Equal(t, 7*24*time.Hour, mr.TTL("auth:token:blacklist:"+first.RefreshToken))
}

func TestJWTManager_BlacklistFloor(t *testing.T) {
	ctx := context.Background()
	kv, mr := newKV(t)
	m, err := NewJWTManager(kv, fakeSource{}, JWTConfig{Secret: testSecret, AccessTTL: 10 * time.Second})
	require.NoError(t, err)

	first, err := m.GenerateToken(ctx, sampleInfo())
	require.NoError(t, err)
	_, err = m.GenerateToken(ctx, sampleInfo())
	require.NoError(t, err)

	require.Equal(t, time.Minute, mr.TTL("auth:token:blacklist:"+first.AccessToken))
}

func TestJWTManager_RefreshReloadsIdentity(t *testing.T) {
	ctx := context.Background()
	info := sampleInfo()
	src := fakeSource{info.UserID: info}
	m, _ := newJWTManager(t, src)

	tok, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)

	moved := info
	moved.DeptID = ptr(int64(11))
	moved.DataScopes = []domain.RoleDataScope{domain.DeptAndSubScope("LEAD")}
	moved.Authorities = []string{"ROLE_LEAD"}
	src[info.UserID] = moved

	next, err := m.RefreshToken(ctx, tok.RefreshToken)
	require.NoError(t, err)

	got, err := m.ParseAccessToken(ctx, next.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(11), *got.DeptID)
	require.Equal(t, moved.DataScopes, got.DataScopes)
	require.Equal(t, moved.Authorities, got.Authorities)

	// the spent refresh token is retired by the rotation
	_, err = m.RefreshToken(ctx, tok.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestJWTManager_RefreshForGoneUser(t *testing.T) {
	ctx := context.Background()
	info := sampleInfo()
	src := fakeSource{info.UserID: info}
	m, _ := newJWTManager(t, src)

	tok, err := m.GenerateToken(ctx, info)
	require.NoError(t, err)

	delete(src, info.UserID)

	_, err = m.RefreshToken(ctx, tok.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestJWTManager_IssuerMismatch(t *testing.T) {
	ctx := context.Background()
	kv, _ := newKV(t)

	a, err := NewJWTManager(kv, fakeSource{}, JWTConfig{Secret: testSecret, Issuer: "a"})
	require.NoError(t, err)
	b, err := NewJWTManager(kv, fakeSource{}, JWTConfig{Secret: testSecret, Issuer: "b"})
	require.NoError(t, err)

	tok, err := a.GenerateToken(ctx, sampleInfo())
	require.NoError(t, err)

	_, err = b.ParseAccessToken(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrAccessTokenInvalid)
}
