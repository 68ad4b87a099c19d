package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/database"
)

// Querier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx, so the
// same repository code runs inside or outside a transaction
type Querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Store implements domain.Store on top of a PostgreSQL pool
type Store struct {
	db   *sqlx.DB
	opts database.TxOptions
}

// NewStore creates a Store using read-committed transactions
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, opts: database.DefaultTxOptions()}
}

// Repos returns repositories bound to the pool
func (s *Store) Repos() domain.Repositories {
	return newRepositories(s.db)
}

// WithTx runs fn with repositories bound to a single transaction
func (s *Store) WithTx(ctx context.Context, fn func(repos domain.Repositories) error) error {
	return database.WithTransaction(ctx, s.db, s.opts, func(tx *sqlx.Tx) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(q Querier) domain.Repositories {
	return domain.Repositories{
		Products:   NewProductRepository(q),
		Reviews:    NewReviewRepository(q),
		Categories: NewCategoryRepository(q),
		Users:      NewUserRepository(q),
	}
}

// translate maps driver errors onto domain error kinds. onUnique is the
// kind to report for a unique violation.
func translate(err error, onUnique error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	switch database.ClassifyError(err) {
	case database.ErrorClassUniqueViolation:
		return fmt.Errorf("%w: %v", onUnique, err)
	case database.ErrorClassForeignKeyViolation:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case database.ErrorClassCheckViolation, database.ErrorClassNotNullViolation:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return err
}

// expectOneRow turns a zero-row UPDATE into ErrNotFound
func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
