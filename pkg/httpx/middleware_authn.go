package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// Authenticator resolves a bearer credential into a context carrying the
// caller (see WithAuth). Any error means the request is unauthenticated.
type Authenticator func(ctx context.Context, token string) (context.Context, error)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, err error)

// AuthnMiddleware rejects requests whose bearer token the authenticator does
// not accept. A missing token is reported to onErr with a nil error.
func AuthnMiddleware(authn Authenticator, onErr ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := BearerToken(r)
			if raw == "" {
				onErr(w, nil)
				return
			}

			authed, err := authn(ctx, raw)
			if err != nil {
				log.Warn("bearer authentication failed", "err", err)
				onErr(w, err)
				return
			}

			if id, ok := UserIDFromContext(authed); ok {
				authed = slogx.WithUserID(authed, id)
			}

			next.ServeHTTP(w, r.WithContext(authed))
		})
	}
}
