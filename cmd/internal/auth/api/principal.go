package api

import "context"

// Principal is the request-scoped authenticated identity.
// Authority is the single derived capability tag, "ROLE_" + Role.
type Principal struct {
	Subject   string
	Username  string
	Role      string
	Authority string
}

type principalKey struct{}

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the authenticated principal, if any.
// An absent principal means the request is anonymous, not failed.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
