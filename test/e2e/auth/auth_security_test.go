//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies that login with a wrong password or an
// unknown account is rejected.
func TestInvalidCredentials(t *testing.T) {
	baseURL := setupAuthServer(t, serverOptions{})
	client := authsdk.NewSDKClient(baseURL)

	_, err := client.Login(t.Context(), adminUsername, "wrong-password")
	assertResultCode(t, err, authsdk.ErrUserPassword, "Invalid password should be rejected")

	_, err = client.Login(t.Context(), "nobody", "wrong-password")
	assertResultCode(t, err, authsdk.ErrAccountNotFound, "Unknown account should be rejected")

	_, err = client.Login(t.Context(), adminUsername, "")
	assertResultCode(t, err, authsdk.ErrRequiredParameterIsEmpty, "Empty password should be rejected")
}

// TestInvalidAccessToken verifies protected endpoints reject bad tokens.
func TestInvalidAccessToken(t *testing.T) {
	for _, mode := range modes() {
		t.Run(mode, func(t *testing.T) {
			baseURL := setupAuthServer(t, serverOptions{mode: mode})
			client := authsdk.NewSDKClient(baseURL)

			invalidSession := client.NewSessionFromTokens("invalid-token-12345", "", 3600)
			_, err := invalidSession.Me(t.Context())
			assertResultCode(t, err, authsdk.ErrAccessTokenInvalid, "Invalid token should be rejected")
			require.True(t, authsdk.IsAuthError(err))
		})
	}
}

// TestMissingAccessToken verifies a request without credentials gets A0301.
func TestMissingAccessToken(t *testing.T) {
	baseURL := setupAuthServer(t, serverOptions{})

	resp, err := http.Get(baseURL + "/api/v1/users/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2, err := http.Get(baseURL + "/api/v1/does-not-exist")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

// TestChangePasswordRevokesSessions verifies the user's tokens die when the
// password changes.
func TestChangePasswordRevokesSessions(t *testing.T) {
	for _, mode := range modes() {
		t.Run(mode, func(t *testing.T) {
			baseURL := setupAuthServer(t, serverOptions{mode: mode})
			client := authsdk.NewSDKClient(baseURL)
			ctx := t.Context()

			session := performLogin(t, client, adminUsername, adminPassword)
			access, refresh := session.AccessToken(), session.RefreshToken()

			err := session.ChangePassword(ctx, adminPassword, "short")
			assertResultCode(t, err, authsdk.ErrInvalidUserInput, "Short password should be rejected")

			require.NoError(t, session.ChangePassword(ctx, adminPassword, "Brand-New-Pass1"))

			stale := client.NewSessionFromTokens(access, "", 3600)
			_, err = stale.Me(ctx)
			assertResultCode(t, err, authsdk.ErrAccessTokenInvalid, "Access token should be revoked")

			_, err = client.RefreshToken(ctx, refresh)
			assertResultCode(t, err, authsdk.ErrRefreshTokenInvalid, "Refresh token should be revoked")

			_, err = client.Login(ctx, adminUsername, adminPassword)
			assertResultCode(t, err, authsdk.ErrUserPassword, "Old password should no longer work")

			fresh := performLogin(t, client, adminUsername, "Brand-New-Pass1")
			_, err = fresh.Me(ctx)
			require.NoError(t, err)
		})
	}
}
