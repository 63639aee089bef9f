package auth

import "context"

type ctxKey int

const principalKey ctxKey = 0

// Principal is the authenticated caller resolved by the identity guard.
type Principal struct {
	UserID   string
	UserName string
}

// WithPrincipal attaches p to ctx unless a principal is already present, in
// which case ctx is returned unchanged.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if _, ok := PrincipalFromContext(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller attached by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
