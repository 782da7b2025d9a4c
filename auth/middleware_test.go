package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLookup map[string]*Identity

func (s staticLookup) Lookup(_ context.Context, username string) (*Identity, error) {
	id, ok := s[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return id, nil
}

func testAuthenticator(t *testing.T, users UserLookup) (*RequestAuthenticator, *TokenService) {
	t.Helper()
	svc := newTestService(t, nil)
	return NewRequestAuthenticator(svc, users, nil, nil), svc
}

// captureIdentity records what the downstream handler observed.
func captureIdentity(called *int, got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called++
		*got = IdentityFromContext(r.Context())
	})
}

func TestRequestAuthenticator_ValidToken(t *testing.T) {
	users := staticLookup{
		"alice": {Username: "alice", Roles: []string{"ROLE_USER", "ROLE_ADMIN"}},
	}
	ra, svc := testAuthenticator(t, users)

	token, err := svc.Issue(&Identity{Username: "alice"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var called int
	var got *Identity
	handler := ra.Wrap(captureIdentity(&called, &got))

	r := httptest.NewRequest("GET", "/hello/alice", nil)
	r.Header.Set("Authorization", BearerPrefix+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if called != 1 {
		t.Fatalf("next handler called %d times, want 1", called)
	}
	if got == nil {
		t.Fatal("downstream saw no identity, want alice")
	}
	if got.Username != "alice" {
		t.Errorf("identity username = %q, want alice", got.Username)
	}
	if !got.HasRole("ADMIN") {
		t.Errorf("identity roles = %v, want lookup roles", got.Roles)
	}
}

func TestRequestAuthenticator_DegradesToAnonymous(t *testing.T) {
	users := staticLookup{
		"alice": {Username: "alice", Roles: []string{"ROLE_USER"}},
	}
	ra, svc := testAuthenticator(t, users)

	valid, err := svc.Issue(&Identity{Username: "alice"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	// Valid signature, but the subject is unknown to the store.
	ghost, err := svc.Issue(&Identity{Username: "ghost"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no authorization header", ""},
		{"wrong scheme", "Token " + valid},
		{"prefix without token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
		{"unknown subject", "Bearer " + ghost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called int
			var got *Identity
			handler := ra.Wrap(captureIdentity(&called, &got))

			r := httptest.NewRequest("GET", "/hello/alice", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if called != 1 {
				t.Fatalf("next handler called %d times, want 1", called)
			}
			if got != nil {
				t.Errorf("downstream saw identity %v, want anonymous", got)
			}
			if w.Code != http.StatusOK {
				t.Errorf("middleware wrote status %d, want untouched 200", w.Code)
			}
		})
	}
}

func TestRequestAuthenticator_IdentityNotShared(t *testing.T) {
	shared := &Identity{Username: "alice", Roles: []string{"ROLE_USER"}}
	users := UserLookupFunc(func(context.Context, string) (*Identity, error) {
		return shared, nil
	})
	ra, svc := testAuthenticator(t, users)

	token, err := svc.Issue(&Identity{Username: "alice"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	serve := func(mutate bool) *Identity {
		var got *Identity
		handler := ra.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = IdentityFromContext(r.Context())
			if mutate {
				got.Roles[0] = "ROLE_TAMPERED"
			}
		}))
		r := httptest.NewRequest("GET", "/hello/alice", nil)
		r.Header.Set("Authorization", BearerPrefix+token)
		handler.ServeHTTP(httptest.NewRecorder(), r)
		return got
	}

	// A handler mutating its identity must not bleed into other
	// requests or into the store's record.
	serve(true)
	second := serve(false)

	if second.Roles[0] != "ROLE_USER" {
		t.Errorf("second request saw roles %v, want ROLE_USER", second.Roles)
	}
	if shared.Roles[0] != "ROLE_USER" {
		t.Errorf("store record mutated through request identity: %v", shared.Roles)
	}
}

func TestRequestAuthenticator_LookupError(t *testing.T) {
	failing := UserLookupFunc(func(context.Context, string) (*Identity, error) {
		return nil, errors.New("store unavailable")
	})
	ra, svc := testAuthenticator(t, failing)

	token, err := svc.Issue(&Identity{Username: "alice"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var called int
	var got *Identity
	handler := ra.Wrap(captureIdentity(&called, &got))

	r := httptest.NewRequest("GET", "/hello/alice", nil)
	r.Header.Set("Authorization", BearerPrefix+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if called != 1 {
		t.Fatalf("next handler called %d times, want 1", called)
	}
	if got != nil {
		t.Errorf("downstream saw identity %v, want anonymous on lookup failure", got)
	}
}

func TestRequestAuthenticator_LookupPanic(t *testing.T) {
	panicking := UserLookupFunc(func(context.Context, string) (*Identity, error) {
		panic("store went sideways")
	})
	ra, svc := testAuthenticator(t, panicking)

	token, err := svc.Issue(&Identity{Username: "alice"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var called int
	var got *Identity
	handler := ra.Wrap(captureIdentity(&called, &got))

	r := httptest.NewRequest("GET", "/hello/alice", nil)
	r.Header.Set("Authorization", BearerPrefix+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if called != 1 {
		t.Fatalf("next handler called %d times, want 1", called)
	}
	if got != nil {
		t.Errorf("downstream saw identity %v, want anonymous after panic", got)
	}
}
