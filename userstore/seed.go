package userstore

import (
	"context"
	"errors"
)

// SeedUser is a user record created at startup.
type SeedUser struct {
	Username string
	Password string
	Roles    []string
}

// DefaultSeedUsers are the demo accounts created when seeding is enabled.
func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{Username: "user", Password: "userPassword", Roles: []string{"USER"}},
		{Username: "admin", Password: "adminPassword", Roles: []string{"ADMIN"}},
	}
}

// Seed creates the given users, skipping any that already exist so the
// seed is safe to run on every startup against a persistent store.
func Seed(ctx context.Context, store Store, users []SeedUser) error {
	for _, u := range users {
		err := store.Create(ctx, u.Username, u.Password, u.Roles...)
		if err != nil && !errors.Is(err, ErrUserExists) {
			return err
		}
	}
	return nil
}
