package userstore

import (
	"context"
	"testing"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := Seed(ctx, store, DefaultSeedUsers()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	id, err := store.Verify(ctx, "user", "userPassword")
	if err != nil {
		t.Fatalf("Verify(user) error = %v", err)
	}
	if !id.HasRole("USER") {
		t.Errorf("seeded user roles = %v, want ROLE_USER", id.Roles)
	}

	id, err = store.Verify(ctx, "admin", "adminPassword")
	if err != nil {
		t.Fatalf("Verify(admin) error = %v", err)
	}
	if !id.HasRole("ADMIN") {
		t.Errorf("seeded admin roles = %v, want ROLE_ADMIN", id.Roles)
	}
}

func TestSeed_Rerun(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := Seed(ctx, store, DefaultSeedUsers()); err != nil {
		t.Fatalf("first Seed() error = %v", err)
	}
	// Existing users are skipped, not an error.
	if err := Seed(ctx, store, DefaultSeedUsers()); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	if _, err := store.Verify(ctx, "user", "userPassword"); err != nil {
		t.Errorf("Verify() after reseed error = %v", err)
	}
}
