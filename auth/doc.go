// Package auth implements stateless, token-based request authentication
// for HTTP services.
//
// It covers the full token lifecycle: issuing compact signed tokens at
// login, validating them on every subsequent request, and propagating the
// authenticated identity (with its roles) through the request context for
// downstream authorization. Credential storage is consumed through the
// narrow UserLookup and CredentialVerifier interfaces so the package stays
// free of persistence concerns.
package auth
