package store

import (
	"context"
	"errors"

	"github.com/aurorahq/standardauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite and, in
// the future, postgres) implement this. It exposes sub-repositories to keep
// concerns tidy and testable.
type Store interface {
	Accounts() Accounts
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by the service via
	// ULID). Returns ErrAlreadyExists when the login is taken; the accounts
	// table carries a unique index on login, so concurrent creates for the
	// same login are serialized here rather than by any pre-check.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByLogin is used during credential checks.
	GetAccountByLogin(ctx context.Context, login string) (domain.Account, error)

	// ListAccountsByUser returns all accounts owned by a user, oldest first.
	ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)

	// LoginExists reports whether any account already uses the login.
	LoginExists(ctx context.Context, login string) (bool, error)

	// UpdateAccount persists mutated fields (login, password, disabled flag,
	// properties, last_modified) and bumps updated_at.
	UpdateAccount(ctx context.Context, a domain.Account) error

	// DeleteAccount removes the row. Returns ErrNotFound if nothing matched.
	DeleteAccount(ctx context.Context, id string) error

	// DeleteOrphanedAccounts removes accounts whose owning user no longer
	// exists. Housekeeping; returns the number of rows removed.
	DeleteOrphanedAccounts(ctx context.Context) (int64, error)
}

type Users interface {
	// CreateUser inserts a new owning-user record.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByPublicID looks a user up by its externally visible identifier.
	GetUserByPublicID(ctx context.Context, publicID string) (domain.User, error)

	// DeleteUser removes the user record. Account cleanup is the credential
	// service's cascade, not a schema-level action.
	DeleteUser(ctx context.Context, id string) error
}
