package token

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newKV(t *testing.T) (*kvx.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	kv, err := kvx.NewRedisStore(context.Background(), kvx.RedisConfig{URL: "redis://" + mr.Addr(), DB: -1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	return kv, mr
}

// fakeSource serves auth info from a map; missing users are gone.
type fakeSource map[int64]domain.UserAuthInfo

func (f fakeSource) Load(_ context.Context, userID int64) (domain.UserAuthInfo, error) {
	info, ok := f[userID]
	if !ok {
		return domain.UserAuthInfo{}, ErrSubjectGone
	}
	return info, nil
}

func ptr[T any](v T) *T { return &v }

func sampleInfo() domain.UserAuthInfo {
	return domain.UserAuthInfo{
		UserID: 5,
		DeptID: ptr(int64(2)),
		DataScopes: []domain.RoleDataScope{
			domain.SelfScope("STAFF"),
			domain.DeptScope("LEAD"),
			domain.CustomScope("AUDIT", []int64{7, 9}),
		},
		Authorities: []string{"ROLE_STAFF", "ROLE_LEAD", "ROLE_AUDIT"},
	}
}
