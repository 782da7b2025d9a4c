package auth

import (
	"context"
	"testing"

	"github.com/jonwraymond/authops/health"
)

func TestSigningKeyChecker(t *testing.T) {
	svc := newTestService(t, nil)
	checker := SigningKeyChecker("signing_key", svc)

	if checker.Name() != "signing_key" {
		t.Errorf("Name() = %q, want signing_key", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != health.StatusHealthy {
		t.Errorf("status = %v (%s), want healthy", result.Status, result.Message)
	}
}
