package auth

import (
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"well-formed", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Token abc.def.ghi", "", false},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", false},
		{"prefix without token", "Bearer ", "", false},
		{"prefix without space", "Bearer", "", false},
		{"lowercase scheme", "bearer abc", "", false},
		{"token with trailing space kept verbatim", "Bearer abc ", "abc ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BearerToken(tt.header)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBearerFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/hello/alice", nil)
	r.Header.Set("Authorization", "Bearer tok123")

	got, ok := BearerFromRequest(r)
	if !ok || got != "tok123" {
		t.Errorf("BearerFromRequest() = (%q, %v), want (tok123, true)", got, ok)
	}

	bare := httptest.NewRequest("GET", "/hello/alice", nil)
	if _, ok := BearerFromRequest(bare); ok {
		t.Error("BearerFromRequest() without header = true, want false")
	}
}
