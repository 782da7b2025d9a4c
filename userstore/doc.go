// Package userstore provides the credential store collaborators consumed
// by the auth package: user records with bcrypt password hashes and role
// sets, backed by either an in-memory map or a SQLite database. Both
// backends implement auth.UserLookup and auth.CredentialVerifier.
package userstore
