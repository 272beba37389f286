package kvx_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, prefix string) (*kvx.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s, err := kvx.NewRedisStore(context.Background(), kvx.RedisConfig{
		URL:    "redis://" + mr.Addr(),
		DB:     -1,
		Prefix: prefix,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestKey(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		args    []any
		want    string
	}{
		{"single", "auth:user:security_version:{}", []any{int64(7)}, "auth:user:security_version:7"},
		{"string arg", "auth:token:blacklist:{}", []any{"abc.def"}, "auth:token:blacklist:abc.def"},
		{"two placeholders", "a:{}:b:{}", []any{1, "x"}, "a:1:b:x"},
		{"no args", "auth:online:users", nil, "auth:online:users"},
		{"extra args ignored", "a:{}", []any{1, 2}, "a:1"},
		{"extra placeholders kept", "a:{}:{}", []any{1}, "a:1:{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, kvx.Key(tt.pattern, tt.args...))
		})
	}
}

func TestRedisStore_StringOps(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "")

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, kvx.ErrNil)

	require.NoError(t, s.Set(ctx, "k", "v"))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", got)

	require.NoError(t, s.SetEX(ctx, "ttl", "1", time.Minute))
	require.Equal(t, time.Minute, mr.TTL("ttl"))
	require.Error(t, s.SetEX(ctx, "ttl", "1", 0))

	ok, err := s.Exists(ctx, "ttl")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = s.Exists(ctx, "ttl")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Del(ctx, "k", "never-existed"))
	require.NoError(t, s.Del(ctx))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, kvx.ErrNil)
}

func TestRedisStore_Incr(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "")

	n, err := s.Incr(ctx, "counter")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.Set(ctx, "counter", "41"))
	n, err = s.Incr(ctx, "counter")
	require.NoError(t, err)
	require.EqualValues(t, 42, n)
}

func TestRedisStore_HashOps(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "")

	require.NoError(t, s.HSet(ctx, "h", "a", "1"))
	require.NoError(t, s.HSet(ctx, "h", "b", "2"))

	v, err := s.HGet(ctx, "h", "a")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	_, err = s.HGet(ctx, "h", "zzz")
	require.ErrorIs(t, err, kvx.ErrNil)

	all, err := s.HGetAll(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, all)

	require.NoError(t, s.HDel(ctx, "h", "a"))
	all, err = s.HGetAll(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"b": "2"}, all)

	empty, err := s.HGetAll(ctx, "nothing")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestRedisStore_Prefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "tenant1:")

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.True(t, mr.Exists("tenant1:k"))
	require.False(t, mr.Exists("k"))

	require.NoError(t, s.Del(ctx, "k"))
	require.False(t, mr.Exists("tenant1:k"))
}

func TestNewRedisStore_Errors(t *testing.T) {
	_, err := kvx.NewRedisStore(context.Background(), kvx.RedisConfig{URL: "://bad"})
	require.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = kvx.NewRedisStore(context.Background(), kvx.RedisConfig{URL: "redis://" + addr, DB: -1})
	require.Error(t, err)
}
