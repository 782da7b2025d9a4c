package auth

import "context"

// UserLookup resolves a validated token subject to a full identity,
// including its roles.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Lookup should honor cancellation/deadlines.
// - Errors: returns ErrUserNotFound (possibly wrapped) when the username
//   is unknown; any other error indicates an infrastructure failure.
type UserLookup interface {
	Lookup(ctx context.Context, username string) (*Identity, error)
}

// CredentialVerifier checks a username/password pair. Used only by the
// login flow; the per-request authenticator never sees passwords.
//
// Contract:
// - Errors: returns ErrBadCredentials (possibly wrapped) for a wrong
//   password or an unknown user; callers must not be able to tell the
//   two apart.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*Identity, error)
}

// UserLookupFunc is an adapter to allow ordinary functions as UserLookups.
type UserLookupFunc func(ctx context.Context, username string) (*Identity, error)

// Lookup calls the function.
func (f UserLookupFunc) Lookup(ctx context.Context, username string) (*Identity, error) {
	return f(ctx, username)
}
