// Package server wires the HTTP surface of the authentication service:
// the public signin and health routes, the authenticated demo routes,
// and the middleware chain (observability, then request authentication,
// then per-route authorization guards).
package server
