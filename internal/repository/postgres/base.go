package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx executes a function within a transaction. Every exit path other
// than success rolls back, including panics.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// postgres error codes that mean the row or object already exists
const (
	pqUniqueViolation = "23505"
	pqDuplicateObject = "42710"
)

// isDuplicate reports whether err is a uniqueness or duplicate-object
// violation.
func isDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation || pqErr.Code == pqDuplicateObject
	}
	return false
}

// mapNoRows converts sql.ErrNoRows into the NotFound category for keyed
// lookups. Rows excluded by a scope filter take the same path as rows that
// never existed.
func mapNoRows(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
