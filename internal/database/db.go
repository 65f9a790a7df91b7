// Package database provides the sqlx-backed SQLite instance the repositories
// run against.
package database

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

// DB is the slice of sqlx the repositories use. Narrowed to what the code
// calls so tests can swap implementations.
type DB interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	PingContext(ctx context.Context) error
	Close() error
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// DatabaseInstance wraps sqlx.DB with a logger for transaction diagnostics.
type DatabaseInstance struct {
	*sqlx.DB
	logger ectologger.Logger
}

// NewDatabaseInstance creates a new database instance
func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger) *DatabaseInstance {
	return &DatabaseInstance{
		DB:     db,
		logger: logger,
	}
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
func (db *DatabaseInstance) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.WithContext(ctx).WithError(rbErr).Error("Failed to rollback after panic")
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.WithContext(ctx).WithError(rbErr).Error("Failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}
