package auth

import "strings"

// RolePrefix is the naming convention applied to role names: a role
// declared as "USER" is stored and checked as "ROLE_USER".
const RolePrefix = "ROLE_"

// RoleName applies RolePrefix to a bare role name. Names that already
// carry the prefix pass through unchanged.
func RoleName(name string) string {
	if strings.HasPrefix(name, RolePrefix) {
		return name
	}
	return RolePrefix + name
}

// Identity represents an authenticated principal.
type Identity struct {
	// Username is the unique identifier of the principal. Immutable
	// once issued into a token.
	Username string

	// Roles are the role names granted to this identity, in the order
	// the credential store returns them.
	Roles []string
}

// Clone returns an independent copy of the identity. Roles get their
// own backing array, so mutating the clone never touches the original.
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	roles := make([]string, len(id.Roles))
	copy(roles, id.Roles)
	return &Identity{Username: id.Username, Roles: roles}
}

// HasRole checks if the identity carries a specific role. The role is
// compared after RoleName normalization, so HasRole("USER") and
// HasRole("ROLE_USER") are equivalent.
func (id *Identity) HasRole(role string) bool {
	role = RoleName(role)
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}
