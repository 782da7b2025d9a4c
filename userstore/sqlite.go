package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jonwraymond/authops/auth"
)

// SQLiteStoreConfig holds configuration for the SQLite credential store.
type SQLiteStoreConfig struct {
	// Path is the filesystem path to the SQLite database file.
	Path string
}

// SQLiteStore is a credential store backed by a SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	writeLock sync.Mutex // the driver does not support concurrent writes
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if necessary) the database at the
// configured path and ensures the schema exists.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    UNIQUE NOT NULL,
			password_hash BLOB    NOT NULL,
			created_at    INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS user_roles (
			user_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role     TEXT    NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (user_id, role)
		);
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Create implements Store.Create.
func (s *SQLiteStore) Create(ctx context.Context, username, password string, roles ...string) error {
	if username == "" {
		return fmt.Errorf("create user: empty username")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, hash, time.Now().Unix(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				return fmt.Errorf("%w: %q", ErrUserExists, username)
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}

	userID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for i, role := range normalizeRoles(roles) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role, position) VALUES (?, ?, ?)",
			userID, role, i,
		); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Lookup implements auth.UserLookup. Roles come back in insertion order.
func (s *SQLiteStore) Lookup(ctx context.Context, username string) (*auth.Identity, error) {
	u, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return identity(u), nil
}

// Verify implements auth.CredentialVerifier. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *SQLiteStore) Verify(ctx context.Context, username, password string) (*auth.Identity, error) {
	u, err := s.getUser(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, auth.ErrBadCredentials
		}
		return nil, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return nil, auth.ErrBadCredentials
	}
	return identity(u), nil
}

func (s *SQLiteStore) getUser(ctx context.Context, username string) (*User, error) {
	var (
		userID int64
		u      = &User{Username: username}
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT id, password_hash FROM users WHERE username = ?", username,
	).Scan(&userID, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", auth.ErrUserNotFound, username)
	} else if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT role FROM user_roles WHERE user_id = ? ORDER BY position", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		u.Roles = append(u.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return u, nil
}

// Ping implements Store.Ping.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.Close.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
