// Package security holds the principal model and the access rules applied
// to every core operation.
package security

import "context"

// Principal is the authenticated caller passed explicitly into core operations.
type Principal struct {
	UserID             int64
	Username           string
	IsAdmin            bool
	MustChangePassword bool
}

type principalKey struct{}

// WithPrincipal adds the principal to context.
// Used by the auth middleware to hand the caller to handlers and the logger.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom retrieves the principal from context.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
