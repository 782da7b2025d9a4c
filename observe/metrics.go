package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics records per-request HTTP metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type RequestMetrics interface {
	// RecordRequest records a completed HTTP request.
	RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration)
}

// requestMetrics is the concrete implementation of RequestMetrics.
type requestMetrics struct {
	totalCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewRequestMetrics creates a RequestMetrics instance on the given meter.
func NewRequestMetrics(meter metric.Meter) (RequestMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"http.server.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &requestMetrics{
		totalCount:   totalCount,
		durationHist: durationHist,
	}, nil
}

// RecordRequest records metrics for a completed request.
func (m *requestMetrics) RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", meta.Method),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	}
	if meta.Route != "" {
		attrs = append(attrs, attribute.String("http.route", meta.Route))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// nopRequestMetrics is a RequestMetrics implementation that does nothing.
type nopRequestMetrics struct{}

func (nopRequestMetrics) RecordRequest(context.Context, RouteMeta, int, time.Duration) {}

// NopRequestMetrics returns a RequestMetrics that discards everything.
func NopRequestMetrics() RequestMetrics {
	return nopRequestMetrics{}
}

// AuthMetrics records authentication-specific metrics: issued tokens,
// rejected tokens by reason, lookup failures, and login outcomes.
//
// A nil *AuthMetrics is a valid no-op recorder; every method tolerates a
// nil receiver so call sites need no guards.
type AuthMetrics struct {
	issued         metric.Int64Counter
	rejected       metric.Int64Counter
	lookupFailures metric.Int64Counter
	logins         metric.Int64Counter
	loginDuration  metric.Float64Histogram
}

// NewAuthMetrics creates an AuthMetrics instance on the given meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	issued, err := meter.Int64Counter(
		"auth.tokens.issued",
		metric.WithDescription("Total number of tokens issued"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter(
		"auth.tokens.rejected",
		metric.WithDescription("Total number of tokens rejected during request authentication"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, err
	}

	lookupFailures, err := meter.Int64Counter(
		"auth.lookup.failures",
		metric.WithDescription("Total number of user lookup failures during request authentication"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	logins, err := meter.Int64Counter(
		"auth.logins",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	loginDuration, err := meter.Float64Histogram(
		"auth.login.duration_ms",
		metric.WithDescription("Login handling duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		issued:         issued,
		rejected:       rejected,
		lookupFailures: lookupFailures,
		logins:         logins,
		loginDuration:  loginDuration,
	}, nil
}

// TokenIssued records a successful token issuance.
func (m *AuthMetrics) TokenIssued(ctx context.Context) {
	if m == nil {
		return
	}
	m.issued.Add(ctx, 1)
}

// TokenRejected records a token rejected during request authentication.
// The reason is a stable diagnostic label (malformed, expired, signature,
// unsupported, empty).
func (m *AuthMetrics) TokenRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// LookupFailed records a user lookup failure during request authentication.
func (m *AuthMetrics) LookupFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.lookupFailures.Add(ctx, 1)
}

// LoginAttempt records a login attempt and its outcome.
func (m *AuthMetrics) LoginAttempt(ctx context.Context, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	opt := metric.WithAttributes(attribute.String("outcome", outcome))
	m.logins.Add(ctx, 1, opt)
	m.loginDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}
