package userstore

import (
	"context"
	"errors"

	"github.com/jonwraymond/authops/auth"
)

// ErrUserExists indicates a username is already taken.
var ErrUserExists = errors.New("userstore: user already exists")

// User is a stored credential record.
type User struct {
	Username     string
	PasswordHash []byte
	// Roles in insertion order; the order is preserved through lookup
	// and into issued login responses.
	Roles []string
}

// Store is the full credential store surface: the two read interfaces
// the auth core consumes plus the write path used for seeding.
type Store interface {
	auth.UserLookup
	auth.CredentialVerifier

	// Create adds a user with a bcrypt-hashed password and the given
	// roles (bare names are normalized with auth.RoleName). Returns
	// ErrUserExists when the username is taken.
	Create(ctx context.Context, username, password string, roles ...string) error

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases backing resources.
	Close() error
}

// identity builds an auth.Identity from a user record, copying the role
// slice so callers cannot mutate stored state.
func identity(u *User) *auth.Identity {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return &auth.Identity{Username: u.Username, Roles: roles}
}

// normalizeRoles applies the role naming convention to a role list,
// dropping duplicates while keeping first-seen order.
func normalizeRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		name := auth.RoleName(r)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
