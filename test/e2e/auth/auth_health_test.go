//go:build e2e

package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/backoffice/internal/auth/app"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	baseURL := setupAuthServer(t, serverOptions{})
	client := authsdk.NewSDKClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
	require.Equal(t, app.BuildVersion, health.Version)
}

// TestLivezReportsStampedVersion checks that an ldflags-stamped version is
// what the service reports.
func TestLivezReportsStampedVersion(t *testing.T) {
	prev := app.BuildVersion
	app.BuildVersion = "v9.9.9-rc1"
	t.Cleanup(func() { app.BuildVersion = prev })

	baseURL := setupAuthServer(t, serverOptions{})

	health, err := authsdk.NewSDKClient(baseURL).GetLiveness(t.Context())
	assertHealthy(t, health, err)
	require.Equal(t, "v9.9.9-rc1", health.Version)
}

// TestReadyzEndpoint verifies readiness reports both the database and redis.
func TestReadyzEndpoint(t *testing.T) {
	baseURL := setupAuthServer(t, serverOptions{})
	client := authsdk.NewSDKClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Cache)
}
