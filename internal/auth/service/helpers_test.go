package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/backoffice/internal/auth/token"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/stretchr/testify/require"
)

const adminPassword = "admin-pass"

type testEnv struct {
	store   *sqlite.Store
	kv      *kvx.RedisStore
	mr      *miniredis.Miniredis
	tokens  token.Manager
	online  *OnlineUsers
	auth    *AuthService
	users   *UserService
	adminID int64
}

func newEnv(t *testing.T, mode string) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	kv, err := kvx.NewRedisStore(ctx, kvx.RedisConfig{URL: "redis://" + mr.Addr(), DB: -1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	loader := &AuthInfoLoader{Store: st}
	tokens, err := token.NewResolver(token.ResolverConfig{
		Mode:   mode,
		KV:     kv,
		Source: loader,
		JWT: token.JWTConfig{
			Secret:     []byte("0123456789abcdef0123456789abcdef"),
			Issuer:     "backoffice-test",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Session: token.SessionConfig{AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour},
	}).Get()
	require.NoError(t, err)

	adminID, err := (&BootstrapService{Store: st}).Bootstrap(ctx, domain.BootstrapData{
		AdminUsername: "admin",
		AdminPassword: adminPassword,
	})
	require.NoError(t, err)

	online := NewOnlineUsers(kv)
	return &testEnv{
		store:   st,
		kv:      kv,
		mr:      mr,
		tokens:  tokens,
		online:  online,
		auth:    &AuthService{Store: st, Tokens: tokens, Loader: loader, Online: online},
		users:   &UserService{Store: st, Scopes: datascope.NewEngine(st.Depts())},
		adminID: adminID,
	}
}

// addUser creates a user in the admin's root department.
func (e *testEnv) addUser(t *testing.T, username, password string, status int, deptID *int64) int64 {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	id, err := e.store.Users().CreateUser(context.Background(), domain.User{
		Username:     username,
		Nickname:     username,
		DeptID:       deptID,
		PasswordHash: hash,
		Status:       status,
	})
	require.NoError(t, err)
	return id
}

func modes() []string { return []string{token.ModeJWT, token.ModeRedisToken} }
