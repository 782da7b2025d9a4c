package observe

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// captureMetrics records the last RecordRequest call.
type captureMetrics struct {
	meta   RouteMeta
	status int
	calls  int
}

func (c *captureMetrics) RecordRequest(_ context.Context, meta RouteMeta, status int, _ time.Duration) {
	c.meta = meta
	c.status = status
	c.calls++
}

func TestMiddleware_Wrap(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMiddleware(nil, nil, NewLoggerWithWriter("info", &buf))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	mw.Wrap(CapturePattern(mux)).ServeHTTP(w, httptest.NewRequest("GET", "/hello/alice", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418 passed through", w.Code)
	}

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry["msg"] != "request completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["http.route"] != "GET /hello/{name}" {
		t.Errorf("http.route = %v, want matched pattern", entry["http.route"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("status field = %v, want 418", entry["status"])
	}
}

func TestMiddleware_RouteAttribution(t *testing.T) {
	metrics := &captureMetrics{}
	mw := NewMiddleware(nil, metrics, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /hello/{name}", func(w http.ResponseWriter, r *http.Request) {})

	// An intermediate middleware that derives the request, the way an
	// authentication layer does. The mux's pattern write lands on the
	// derived copy, which the outer middleware never sees directly.
	derive := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			type markerKey struct{}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), markerKey{}, true)))
		})
	}

	handler := mw.Wrap(derive(CapturePattern(mux)))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/hello/alice", nil))

	if metrics.calls != 1 {
		t.Fatalf("RecordRequest called %d times, want 1", metrics.calls)
	}
	if metrics.meta.Route != "GET /hello/{name}" {
		t.Errorf("recorded route = %q, want %q", metrics.meta.Route, "GET /hello/{name}")
	}
	if metrics.meta.Path != "/hello/alice" {
		t.Errorf("recorded path = %q, want /hello/alice", metrics.meta.Path)
	}
}

func TestCapturePattern_WithoutWrap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	CapturePattern(mux).ServeHTTP(w, httptest.NewRequest("GET", "/hello/alice", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 passed through", w.Code)
	}
}

func TestStatusRecorder_DefaultsTo200(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Implicit 200 via Write without WriteHeader.
		_, _ = w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}
