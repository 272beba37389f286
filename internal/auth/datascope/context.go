package datascope

import "context"

type ctxKey struct{}

// WithAuthUser attaches the caller's data-scope context to ctx.
func WithAuthUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the data-scope context, if a request carried one.
func FromContext(ctx context.Context) (AuthUser, bool) {
	u, ok := ctx.Value(ctxKey{}).(AuthUser)
	return u, ok
}
