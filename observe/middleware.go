package observe

import (
	"context"
	"net/http"
	"time"
)

// Middleware wraps HTTP handlers with observability: a server span per
// request, request metrics, and an access log entry.
//
// Contract:
//   - Concurrency: Wrap() returns a handler safe for concurrent use.
//   - Ownership: requests and responses pass through unmodified.
type Middleware struct {
	tracer  Tracer
	metrics RequestMetrics
	logger  Logger
}

// NewMiddleware creates a Middleware with the given components. Nil
// components fall back to no-ops.
func NewMiddleware(tracer Tracer, metrics RequestMetrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = NopRequestMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// routeHolder carries the matched route pattern back out of the
// middleware chain. Intermediate middleware may re-derive the request
// (WithContext returns a shallow copy), so the mux's write to r.Pattern
// is invisible out here; the holder travels by pointer through the
// context instead.
type routeHolder struct {
	pattern string
}

type routeHolderKey struct{}

// CapturePattern records the mux-matched route pattern for an enclosing
// Wrap. Place it directly around the mux, inside any middleware that
// derives the request; it is a no-op when no Wrap is active.
func CapturePattern(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if holder, ok := r.Context().Value(routeHolderKey{}).(*routeHolder); ok {
			holder.pattern = r.Pattern
		}
	})
}

// Wrap instruments the handler. The matched route pattern is only known
// after the mux dispatches, so the span starts with method+path and the
// route attribute is attached when the request completes, via the
// holder CapturePattern fills in.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := RouteMeta{Method: r.Method, Path: r.URL.Path}

		ctx, span := m.tracer.StartSpan(r.Context(), meta)
		holder := &routeHolder{}
		ctx = context.WithValue(ctx, routeHolderKey{}, holder)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		meta.Route = holder.pattern

		m.tracer.EndSpan(span, nil)
		m.metrics.RecordRequest(ctx, meta, rec.status, duration)

		m.logger.WithRoute(meta).Info(ctx, "request completed",
			Field{Key: "status", Value: rec.status},
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		)
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wrote {
		r.status = status
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}
