package auth

import "errors"

// Sentinel errors for token validation and credential resolution.
var (
	// Token validation errors. These are diagnostic only: the request
	// authenticator maps every one of them to "proceed as anonymous".
	ErrTokenEmpty       = errors.New("auth: empty token")
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrTokenSignature   = errors.New("auth: token signature invalid")
	ErrTokenUnsupported = errors.New("auth: unsupported signing scheme")

	// Credential errors.
	ErrBadCredentials = errors.New("auth: bad credentials")
	ErrUserNotFound   = errors.New("auth: user not found")

	// Startup errors.
	ErrKeyTooShort = errors.New("auth: signing key too short")

	// Authorization errors.
	ErrForbidden = errors.New("auth: access denied")
)
