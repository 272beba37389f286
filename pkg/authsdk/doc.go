/*
Package authsdk is a Go client for the back-office authentication API.

# SDKClient vs Session

SDKClient covers the unauthenticated endpoints and creates Sessions:

	client := authsdk.NewSDKClient("https://admin.example.com")

	health, err := client.GetReadiness(ctx)

	session, err := client.AuthenticateWithPassword(ctx, "admin", "secret")

A Session carries the token pair and refreshes it shortly before the access
token expires, so callers never handle refresh themselves:

	me, err := session.Me(ctx)

	page, err := session.ListUsers(ctx, authsdk.UserQuery{Keywords: "ops", PageSize: 20})

	err = session.Logout(ctx)

# Errors

Every API response uses the envelope {"code", "data", "msg"}. A failed call
returns a *ResultError carrying the result code, which matches the
predefined errors with errors.Is:

	_, err := client.Login(ctx, "admin", "wrong")
	if errors.Is(err, authsdk.ErrUserPassword) {
		// A0210
	}

IsAuthError reports whether the credentials are gone for good (for example
after a password change revoked every token) and the user must sign in
again.

# Server Side

The service writes its errors with (*ResultError).WriteError, so the same
values are shared by both ends of the wire.
*/
package authsdk
