package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/internal/auth/token"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// writeError maps a service or token error onto its result code. Anything
// unrecognised is logged and reported as a system error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var re *authsdk.ResultError
	switch {
	case errors.As(err, &re):
		re.WriteError(w)
	case errors.Is(err, token.ErrAccessTokenInvalid):
		authsdk.ErrAccessTokenInvalid.WriteError(w)
	case errors.Is(err, token.ErrRefreshTokenInvalid):
		authsdk.ErrRefreshTokenInvalid.WriteError(w)
	case errors.Is(err, token.ErrInvalidUserID):
		authsdk.ErrSystem.WithMsg("Invalid userId").WriteError(w)
	case errors.Is(err, service.ErrAccountNotFound):
		authsdk.ErrAccountNotFound.WriteError(w)
	case errors.Is(err, service.ErrAccountFrozen):
		authsdk.ErrAccountFrozen.WriteError(w)
	case errors.Is(err, service.ErrBadCredentials):
		authsdk.ErrUserPassword.WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		authsdk.ErrInvalidUserInput.WithMsg(msg).WriteError(w)
	case errors.Is(err, datascope.ErrBadColumn):
		slogx.FromContext(r.Context()).Error("data scope misconfigured", slog.Any("error", err))
		authsdk.ErrSystem.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		authsdk.ErrSystem.WriteError(w)
	}
}

// writeAuthnError renders a rejected bearer credential. A nil error means
// the request carried none.
func writeAuthnError(w http.ResponseWriter, err error) {
	if err == nil {
		authsdk.ErrAccessUnauthorized.WriteError(w)
		return
	}
	if errors.Is(err, token.ErrAccessTokenInvalid) {
		authsdk.ErrAccessTokenInvalid.WriteError(w)
		return
	}
	authsdk.ErrSystem.WriteError(w)
}
