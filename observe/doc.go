// Package observe provides observability for the authentication service:
// structured JSON logging with credential redaction, OpenTelemetry
// metrics and tracing, and HTTP middleware that records per-request
// telemetry. Telemetry is opt-in per subsystem; disabled subsystems fall
// back to no-op implementations.
package observe
