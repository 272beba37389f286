package httpx

import (
	"net/http"
)

// RequireAnyAuthority the caller must hold at least one of the provided
// authorities (e.g. "ROLE_ADMIN").
func RequireAnyAuthority(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range authoritiesFromCtx(r.Context()) {
				if _, ok := want[s]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteResult(w, http.StatusForbidden, CodeAccessDenied, MsgAccessDenied, nil)
		})
	}
}
