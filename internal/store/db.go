package store

import (
	"context"
	"database/sql"
)

// DBTX is the common interface implemented by both *sql.DB and *sql.Tx.
// Stores accept it so the same implementation runs standalone or inside
// a caller-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
