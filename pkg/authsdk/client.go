package authsdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the back-office auth API. It covers the public
// endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for baseURL, e.g. "https://admin.example.com".
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges a username and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeResult(resp, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// RefreshToken exchanges a refresh token for a new pair. The old pair stops
// working.
func (c *SDKClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh-token", "", RefreshTokenRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeResult(resp, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Logout revokes accessToken and, when given, refreshToken.
func (c *SDKClient) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var body any
	if refreshToken != "" {
		body = RefreshTokenRequest{RefreshToken: refreshToken}
	}

	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/auth/logout", accessToken, body)
	if err != nil {
		return err
	}
	return decodeResult(resp, nil)
}

// AuthenticateWithPassword logs in and wraps the pair in a Session.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, username, password string) (*Session, error) {
	tok, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// NewSessionFromTokens resumes a session from stored tokens. The session
// still refreshes itself once expiresIn seconds have passed.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// IsAuthError reports whether err means the credentials are no longer
// usable and the user has to sign in again.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAccessTokenInvalid) ||
		errors.Is(err, ErrRefreshTokenInvalid) ||
		errors.Is(err, ErrAccessUnauthorized)
}
