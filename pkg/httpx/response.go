package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Result is the envelope every JSON response uses.
type Result struct {
	Code string `json:"code"`
	Data any    `json:"data"`
	Msg  string `json:"msg"`
}

// Result codes the transport layer itself emits. Business codes live with the
// callers that produce them.
const (
	CodeSuccess            = "00000"
	CodeAccessDenied       = "A0300"
	CodeAccessUnauthorized = "A0301"
	CodeTooManyRequests    = "A0502"
	CodeSystemError        = "B0001"
	CodeInterfaceNotExist  = "C0113"
)

const (
	MsgSuccess            = "success"
	MsgAccessDenied       = "access permission denied"
	MsgAccessUnauthorized = "access unauthorized"
	MsgTooManyRequests    = "too many requests, please try again later"
	MsgSystemError        = "system error"
	MsgInterfaceNotExist  = "interface does not exist"
)

const bearerPrefix = "bearer "

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteResult writes the envelope with an explicit status, code and message.
func WriteResult(w http.ResponseWriter, status int, code, msg string, data any) {
	WriteJSON(w, status, Result{Code: code, Data: data, Msg: msg})
}

// WriteOK writes a 200 success envelope around data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteResult(w, http.StatusOK, CodeSuccess, MsgSuccess, data)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// BearerToken returns the credential from the Authorization header. The
// "Bearer " prefix is optional and matched case-insensitively.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.EqualFold(raw, strings.TrimSpace(bearerPrefix)) {
		return ""
	}
	if len(raw) >= len(bearerPrefix) &&
		strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		raw = raw[len(bearerPrefix):]
	}
	return strings.TrimSpace(raw)
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
