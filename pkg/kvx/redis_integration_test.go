//go:build integration

package kvx_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a throwaway redis and returns its URL.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRedisStore_RealServer(t *testing.T) {
	ctx := context.Background()
	url := setupRedisContainer(t)

	s, err := kvx.NewRedisStore(ctx, kvx.RedisConfig{URL: url, DB: -1, Prefix: "it:"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetEX(ctx, "blacklist", "1", 2*time.Second))
	ok, err := s.Exists(ctx, "blacklist")
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.Incr(ctx, "version")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.Eventually(t, func() bool {
		ok, err := s.Exists(ctx, "blacklist")
		return err == nil && !ok
	}, 5*time.Second, 200*time.Millisecond)
}
