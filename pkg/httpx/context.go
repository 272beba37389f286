package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID      ctxKey = "user_id"
	CtxKeyAuthorities ctxKey = "authorities"
	CtxKeyPrincipal   ctxKey = "principal" // whatever the authenticator resolved
)

// WithAuth stores the authenticated caller on ctx.
func WithAuth(ctx context.Context, userID int64, authorities []string, principal any) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	ctx = context.WithValue(ctx, CtxKeyAuthorities, authorities)
	ctx = context.WithValue(ctx, CtxKeyPrincipal, principal)
	return ctx
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(int64)
	return id, ok && id > 0
}

func authoritiesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyAuthorities).([]string); ok {
		return v
	}
	return nil
}

// PrincipalFromContext returns the value the authenticator attached.
func PrincipalFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(CtxKeyPrincipal).(T)
	return v, ok
}
