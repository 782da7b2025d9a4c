package userstore

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if len(hash) == 0 {
		t.Fatal("HashPassword() returned empty hash")
	}

	if !VerifyPassword(hash, "s3cret") {
		t.Error("VerifyPassword() = false for the original password")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("VerifyPassword() = true for a different password")
	}
	if VerifyPassword(nil, "s3cret") {
		t.Error("VerifyPassword() = true for an empty hash")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	b, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if string(a) == string(b) {
		t.Error("two hashes of the same password are identical, want distinct salts")
	}
}
