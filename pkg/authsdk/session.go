package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// refreshBuffer refreshes slightly before the server would reject the token.
const refreshBuffer = 30 * time.Second

// Session is an authenticated session with automatic token refresh. It is
// safe for concurrent use.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	s := &Session{client: client}
	s.store(tok)
	return s
}

// store must be called with mu held for writing, or before s is shared.
func (s *Session) store(tok *TokenResponse) {
	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshBuffer)
}

// getValidToken returns a usable access token, refreshing it first if it
// is about to expire.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tok, err := s.client.RefreshToken(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(tok)

	return s.accessToken, nil
}

// Refresh rotates the token pair now, regardless of expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.client.RefreshToken(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.store(tok)
	return nil
}

// AccessToken returns the current access token without checking expiry.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Session) do(ctx context.Context, method, path string, body, target any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.doRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	return decodeResult(resp, target)
}

// Logout revokes both tokens. The session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	access, refresh := s.accessToken, s.refreshToken
	s.accessToken, s.refreshToken = "", ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	return s.client.Logout(ctx, access, refresh)
}

// Me returns the signed-in user's profile.
func (s *Session) Me(ctx context.Context) (*CurrentUser, error) {
	var me CurrentUser
	if err := s.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// ChangePassword changes the signed-in user's password. The server revokes
// every token of the user, including this session's, so the session is
// unusable afterwards.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	err := s.do(ctx, http.MethodPut, "/api/v1/users/me/password", ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken, s.refreshToken = "", ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}

// ListUsers returns one page of the users the caller may see.
func (s *Session) ListUsers(ctx context.Context, q UserQuery) (*UserPage, error) {
	v := url.Values{}
	if q.Keywords != "" {
		v.Set("keywords", q.Keywords)
	}
	if q.Status != nil {
		v.Set("status", strconv.Itoa(*q.Status))
	}
	if q.DeptID != nil {
		v.Set("deptId", strconv.FormatInt(*q.DeptID, 10))
	}
	if q.PageNum > 0 {
		v.Set("pageNum", strconv.Itoa(q.PageNum))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	path := "/api/v1/users/page"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var page UserPage
	if err := s.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// OnlineUsers lists who is currently signed in.
func (s *Session) OnlineUsers(ctx context.Context) (*OnlineUsersResponse, error) {
	var out OnlineUsersResponse
	if err := s.do(ctx, http.MethodGet, "/api/v1/auth/online", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
