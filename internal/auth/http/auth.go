package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	Online      *service.OnlineUsers
}

// HandleLogin accepts a JSON body or form-encoded username/password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if isForm(r) {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	} else if err := decodeOptionalJSON(r, &req); err != nil {
		authsdk.ErrInvalidUserInput.WithMsg("malformed request body").WriteError(w)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		authsdk.ErrRequiredParameterIsEmpty.WriteError(w)
		return
	}

	tok, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, tokenResponse(tok))
}

// HandleRefresh reads refreshToken from the query string first, then from
// the body.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refreshToken")
	if refresh == "" {
		var req authsdk.RefreshTokenRequest
		if err := decodeOptionalJSON(r, &req); err != nil {
			authsdk.ErrInvalidUserInput.WithMsg("malformed request body").WriteError(w)
			return
		}
		refresh = req.RefreshToken
	}

	tok, err := h.AuthService.Refresh(r.Context(), refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, tokenResponse(tok))
}

// HandleLogout revokes the bearer token and, if the body names one, the
// refresh token. It succeeds even when neither is valid.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshTokenRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		authsdk.ErrInvalidUserInput.WithMsg("malformed request body").WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), httpx.BearerToken(r), req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, nil)
}

func (h *AuthHandler) HandleOnline(w http.ResponseWriter, r *http.Request) {
	users, err := h.Online.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.OnlineUsersResponse{Count: len(users), Users: make([]authsdk.OnlineUser, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, authsdk.OnlineUser(u))
	}
	httpx.WriteOK(w, resp)
}

func tokenResponse(tok domain.AuthenticationToken) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		TokenType:    tok.TokenType,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}
}

func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// decodeOptionalJSON decodes a JSON body into v; an empty body is fine.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := httpx.DecodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
