//go:build e2e

package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginRefreshLogout tests the complete flow in both session modes:
// 1. Login with the bootstrapped administrator
// 2. Refresh the token and verify rotation
// 3. Verify the retired pair no longer works
// 4. Logout and verify the current pair is revoked
func TestLoginRefreshLogout(t *testing.T) {
	for _, mode := range modes() {
		t.Run(mode, func(t *testing.T) {
			baseURL := setupAuthServer(t, serverOptions{mode: mode})
			client := authsdk.NewSDKClient(baseURL)
			ctx := t.Context()

			tok, err := client.Login(ctx, adminUsername, adminPassword)
			require.NoError(t, err)
			assertTokenResponse(t, tok)

			next, err := client.RefreshToken(ctx, tok.RefreshToken)
			require.NoError(t, err)
			assertTokenResponse(t, next)
			require.NotEqual(t, tok.AccessToken, next.AccessToken, "Access token should be rotated")
			require.NotEqual(t, tok.RefreshToken, next.RefreshToken, "Refresh token should be rotated")

			// Reusing the retired refresh token is rejected.
			_, err = client.RefreshToken(ctx, tok.RefreshToken)
			assertResultCode(t, err, authsdk.ErrRefreshTokenInvalid, "Retired refresh token should be rejected")

			session := client.NewSessionFromTokens(next.AccessToken, next.RefreshToken, next.ExpiresIn)
			me, err := session.Me(ctx)
			require.NoError(t, err)
			require.Equal(t, adminUsername, me.Username)

			require.NoError(t, session.Logout(ctx))

			stale := client.NewSessionFromTokens(next.AccessToken, "", next.ExpiresIn)
			_, err = stale.Me(ctx)
			assertResultCode(t, err, authsdk.ErrAccessTokenInvalid, "Logged out access token should be rejected")

			_, err = client.RefreshToken(ctx, next.RefreshToken)
			assertResultCode(t, err, authsdk.ErrRefreshTokenInvalid, "Logged out refresh token should be rejected")
		})
	}
}

// TestSessionAutoRefresh verifies the SDK session refreshes an expired
// access token transparently.
func TestSessionAutoRefresh(t *testing.T) {
	baseURL := setupAuthServer(t, serverOptions{})
	client := authsdk.NewSDKClient(baseURL)

	tok, err := client.Login(t.Context(), adminUsername, adminPassword)
	require.NoError(t, err)

	session := client.NewSessionFromTokens(tok.AccessToken, tok.RefreshToken, 0)
	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminUsername, me.Username)
	require.NotEqual(t, tok.AccessToken, session.AccessToken(), "Session should have refreshed")
}
