package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func healthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(context.Context) Result {
		return Healthy("ok")
	})
}

func unhealthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(context.Context) Result {
		return Unhealthy("down", errors.New("connection refused"))
	})
}

func TestAggregator_Register(t *testing.T) {
	agg := NewAggregator()
	agg.Register(healthyChecker("store"))
	agg.Register(healthyChecker("upstream"))
	agg.Register(healthyChecker("store")) // re-register keeps one slot

	names := agg.CheckerNames()
	if len(names) != 2 {
		t.Fatalf("CheckerNames() = %v, want 2 names", names)
	}
	if names[0] != "store" || names[1] != "upstream" {
		t.Errorf("CheckerNames() = %v, want registration order", names)
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator()
	agg.Register(healthyChecker("store"))

	result, err := agg.Check(context.Background(), "store")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("status = %v, want healthy", result.Status)
	}

	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register(healthyChecker("store"))
	agg.Register(unhealthyChecker("upstream"))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results["store"].Status != StatusHealthy {
		t.Errorf("store status = %v, want healthy", results["store"].Status)
	}
	if results["upstream"].Status != StatusUnhealthy {
		t.Errorf("upstream status = %v, want unhealthy", results["upstream"].Status)
	}
	if agg.OverallStatus(results) != StatusUnhealthy {
		t.Errorf("OverallStatus() = %v, want unhealthy", agg.OverallStatus(results))
	}
}

func TestAggregator_CheckTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond})
	agg.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		<-ctx.Done()
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())
	result := results["slow"]
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy on timeout", result.Status)
	}
	if !errors.Is(result.Error, ErrCheckTimeout) {
		t.Errorf("error = %v, want ErrCheckTimeout", result.Error)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{"a": {Status: StatusHealthy}}, StatusHealthy},
		{"one degraded", map[string]Result{"a": {Status: StatusHealthy}, "b": {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", map[string]Result{"a": {Status: StatusDegraded}, "b": {Status: StatusUnhealthy}}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestPingerChecker(t *testing.T) {
	ok := PingerChecker("store", fakePinger{})
	if result := ok.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("status = %v, want healthy", result.Status)
	}

	bad := PingerChecker("store", fakePinger{err: errors.New("no such file")})
	if result := bad.Check(context.Background()); result.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy", result.Status)
	}
}
