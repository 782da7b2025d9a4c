package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	w := httptest.NewRecorder()
	LivenessHandler()(w, httptest.NewRequest("GET", "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", w.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		checker    Checker
		wantStatus int
		wantBody   string
	}{
		{"healthy", healthyChecker("store"), http.StatusOK, "OK"},
		{
			"degraded",
			NewCheckerFunc("store", func(context.Context) Result {
				return Result{Status: StatusDegraded, Message: "slow"}
			}),
			http.StatusOK, "DEGRADED",
		},
		{"unhealthy", unhealthyChecker("store"), http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register(tt.checker)

			w := httptest.NewRecorder()
			ReadinessHandler(agg)(w, httptest.NewRequest("GET", "/readyz", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register(healthyChecker("store"))
	agg.Register(NewCheckerFunc("upstream", func(context.Context) Result {
		return Unhealthy("down", errors.New("connection refused"))
	}))

	w := httptest.NewRecorder()
	DetailedHandler(agg)(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("overall status = %q, want unhealthy", resp.Status)
	}
	if len(resp.Checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(resp.Checks))
	}
	if resp.Checks["store"].Status != "healthy" {
		t.Errorf("store status = %q, want healthy", resp.Checks["store"].Status)
	}
	if resp.Checks["upstream"].Error != "connection refused" {
		t.Errorf("upstream error = %q", resp.Checks["upstream"].Error)
	}
}
