//go:build e2e

package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupMySQLContainer starts a MySQL 8 server and returns a gorm DSN for it.
func setupMySQLContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "root",
			"MYSQL_DATABASE":      "backoffice",
		},
		// The entrypoint restarts mysqld once after initialising the data dir.
		WaitingFor: wait.ForLog("ready for connections").
			WithOccurrence(2).
			WithStartupTimeout(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:root@tcp(%s:%s)/backoffice?charset=utf8mb4&parseTime=true&loc=UTC", host, port.Port())
}

// TestMySQLBackend runs the login, listing and password change flow against
// the gorm driver.
func TestMySQLBackend(t *testing.T) {
	dsn := setupMySQLContainer(t)
	baseURL := setupAuthServer(t, serverOptions{databaseDriver: "mysql", databaseDSN: dsn})
	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	session := performLogin(t, client, adminUsername, adminPassword)

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"ROOT"}, me.Roles)
	require.Equal(t, "Head Office", me.DeptName)

	page, err := session.ListUsers(ctx, authsdk.UserQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)

	require.NoError(t, session.ChangePassword(ctx, adminPassword, "Brand-New-Pass1"))
	performLogin(t, client, adminUsername, "Brand-New-Pass1")
}
