package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

// ============================================================================
// Result Codes
// ============================================================================

const (
	CodeSuccess                  = httpx.CodeSuccess
	CodeAccountNotFound          = "A0201"
	CodeAccountFrozen            = "A0202"
	CodeUserPasswordError        = "A0210"
	CodeAccessTokenInvalid       = "A0230"
	CodeRefreshTokenInvalid      = "A0231"
	CodeAccessPermissionDenied   = httpx.CodeAccessDenied
	CodeAccessUnauthorized       = httpx.CodeAccessUnauthorized
	CodeInvalidUserInput         = "A0402"
	CodeRequiredParameterIsEmpty = "A0410"
	CodeTooManyRequests          = httpx.CodeTooManyRequests
	CodeSystemError              = httpx.CodeSystemError
	CodeInterfaceNotExist        = httpx.CodeInterfaceNotExist
)

// ============================================================================
// ResultError
// ============================================================================

// ResultError is a failed response envelope. The server writes it with
// WriteError and the client parses it back from any non-success response.
type ResultError struct {
	// StatusCode is the HTTP status the envelope travels with.
	StatusCode int `json:"-"`

	// Code is the result code, e.g. "A0230".
	Code string `json:"code"`

	Msg string `json:"msg"`
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is matches any ResultError with the same code, so callers can write
// errors.Is(err, authsdk.ErrAccessTokenInvalid).
func (e *ResultError) Is(target error) bool {
	t, ok := target.(*ResultError)
	return ok && t.Code == e.Code
}

// WithMsg returns a copy carrying a more specific message.
func (e *ResultError) WithMsg(msg string) *ResultError {
	cp := *e
	if msg != "" {
		cp.Msg = msg
	}
	return &cp
}

// WriteError writes the envelope with a null data field.
func (e *ResultError) WriteError(w http.ResponseWriter) {
	httpx.WriteResult(w, e.StatusCode, e.Code, e.Msg, nil)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrAccountNotFound = &ResultError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeAccountNotFound,
		Msg:        "account does not exist",
	}

	ErrAccountFrozen = &ResultError{
		StatusCode: http.StatusForbidden,
		Code:       CodeAccountFrozen,
		Msg:        "account is frozen",
	}

	ErrUserPassword = &ResultError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeUserPasswordError,
		Msg:        "wrong username or password",
	}

	ErrAccessTokenInvalid = &ResultError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeAccessTokenInvalid,
		Msg:        "access token is invalid or expired",
	}

	ErrRefreshTokenInvalid = &ResultError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeRefreshTokenInvalid,
		Msg:        "refresh token is invalid or expired",
	}

	ErrAccessPermissionDenied = &ResultError{
		StatusCode: http.StatusForbidden,
		Code:       CodeAccessPermissionDenied,
		Msg:        httpx.MsgAccessDenied,
	}

	ErrAccessUnauthorized = &ResultError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeAccessUnauthorized,
		Msg:        httpx.MsgAccessUnauthorized,
	}

	ErrInvalidUserInput = &ResultError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidUserInput,
		Msg:        "invalid user input",
	}

	ErrRequiredParameterIsEmpty = &ResultError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeRequiredParameterIsEmpty,
		Msg:        "required request parameter is empty",
	}

	ErrTooManyRequests = &ResultError{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeTooManyRequests,
		Msg:        httpx.MsgTooManyRequests,
	}

	ErrSystem = &ResultError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeSystemError,
		Msg:        httpx.MsgSystemError,
	}

	ErrInterfaceNotExist = &ResultError{
		StatusCode: http.StatusNotFound,
		Code:       CodeInterfaceNotExist,
		Msg:        httpx.MsgInterfaceNotExist,
	}
)

// ============================================================================
// Error Parsing
// ============================================================================

// parseErrorResponse turns a failed response into a *ResultError. Bodies that
// are not an envelope become a B0001 error carrying the HTTP status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env httpx.Result
	if err := json.Unmarshal(body, &env); err == nil && env.Code != "" && env.Code != CodeSuccess {
		return &ResultError{StatusCode: resp.StatusCode, Code: env.Code, Msg: env.Msg}
	}

	return &ResultError{
		StatusCode: resp.StatusCode,
		Code:       CodeSystemError,
		Msg:        fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
