package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithContext sets the Identity in the given context
func WithContext(r context.Context, identity Identity) context.Context {
	return context.WithValue(r, identityCtxKey, identity)
}

// FromContext finds the identity from the context.
func FromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok
}

// FromRouterContext extracts the Identity stashed by the gate middleware
func FromRouterContext(ctx router.Context, key string) (Identity, bool) {
	if key == "" {
		key = "user" // Default key used by the gate middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	identity, ok := raw.(Identity)
	return identity, ok
}

// IsAdmin reports whether the context carries an admin identity.
func IsAdmin(ctx context.Context) bool {
	identity, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ParseRole(identity.Role()).IsAdmin()
}

// HasAuthority checks the context identity's role against an authority
// string, raw or prefixed.
func HasAuthority(ctx context.Context, authority string) bool {
	identity, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ParseRole(identity.Role()).HasAuthority(authority)
}
