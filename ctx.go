package accounts

import (
	"context"
)

var profileCtxKey = &contextKey{"profile"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the Profile in the given context. The authenticated
// profile travels as an explicit context value, never as ambient state.
func WithContext(r context.Context, profile *Profile) context.Context {
	return context.WithValue(r, profileCtxKey, profile)
}

// FromContext finds the profile from the context.
func FromContext(ctx context.Context) (*Profile, bool) {
	raw, ok := ctx.Value(profileCtxKey).(*Profile)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}
