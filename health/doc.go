// Package health provides health checks for the authentication service:
// a Checker interface, an aggregator combining multiple checks, HTTP
// handlers for liveness/readiness/detailed probes, and built-in checkers
// for the credential store.
package health
