package auth

import "context"

// Context key for the request-scoped identity.
type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a new context with the given identity attached.
// The identity is strictly request-scoped: it is never shared across
// requests or persisted beyond the request lifetime.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity from the context.
// Returns nil if the request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// UsernameFromContext retrieves the authenticated username from the
// context. Returns empty string if the request is anonymous.
func UsernameFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.Username
}
