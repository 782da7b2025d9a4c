// Package config loads the service configuration from environment
// variables. Required values (the signing secret above all) are
// validated at load time: a missing or malformed value is a startup
// error, never a per-request one.
package config
