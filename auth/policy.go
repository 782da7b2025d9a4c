package auth

import (
	"fmt"
	"net/http"

	"github.com/jonwraymond/authops/observe"
)

// Messages used by the route guards.
const (
	msgAuthRequired = "Full authentication is required to access this resource"
	msgDenied       = "Access is denied"
)

// ForbiddenError reports an authenticated identity that lacks a role a
// route requires.
type ForbiddenError struct {
	Username string
	Role     string
	Path     string
}

// Error returns the error message.
func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("access denied: user=%q role=%q path=%q", e.Username, e.Role, e.Path)
}

// Is reports whether this error matches ErrForbidden.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// Policy enforces route-level authorization based on the identity the
// RequestAuthenticator placed in the request context. It is the layer
// that turns "no identity on a protected route" into a user-visible 401
// and "wrong role" into a 403. The authenticator itself stays
// policy-free.
type Policy struct {
	responder *UnauthorizedResponder
	logger    observe.Logger
}

// NewPolicy creates a policy bound to the given responder.
func NewPolicy(responder *UnauthorizedResponder, logger observe.Logger) *Policy {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Policy{responder: responder, logger: logger}
}

// RequireAuthenticated guards a route that any authenticated identity
// may access. Anonymous requests receive the uniform 401 body.
func (p *Policy) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			p.responder.Respond(w, r, msgAuthRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole guards a route that only identities carrying the given
// role may access. Anonymous requests get a 401; authenticated
// identities without the role get a 403. The role name is normalized
// with RoleName, so RequireRole("ADMIN") matches "ROLE_ADMIN".
func (p *Policy) RequireRole(role string, next http.Handler) http.Handler {
	role = RoleName(role)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			p.responder.Respond(w, r, msgAuthRequired)
			return
		}
		if !id.HasRole(role) {
			p.forbidden(w, r, id, role)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Policy) forbidden(w http.ResponseWriter, r *http.Request, id *Identity, role string) {
	err := &ForbiddenError{Username: id.Username, Role: role, Path: r.URL.Path}
	p.logger.Warn(r.Context(), "forbidden", observe.Field{Key: "error", Value: err.Error()})

	writeErrorBody(w, errorBody{
		Status:  http.StatusForbidden,
		Error:   "Forbidden",
		Message: msgDenied,
		Path:    r.URL.Path,
	})
}
