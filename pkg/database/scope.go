package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is the subset of a pooled pgx connection the engine uses. Repositories
// issue statements through it and services open transactions on it; tests
// substitute a fake.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Scope wraps a dedicated connection checked out for one logical unit of work
// (usually a request). Holding a single connection guarantees read-after-write
// consistency: reads issued after a commit on this scope observe that commit,
// and repository statements issued while a transaction is open on the
// connection join that transaction.
type Scope struct {
	Conn Conn
}

// Close releases the connection back to the pool.
// This MUST be called when the unit of work finishes.
func (s *Scope) Close() {
	if pc, ok := s.Conn.(*pgxpool.Conn); ok && pc != nil {
		pc.Release()
	}
}

// AcquireScope checks a connection out of the pool for a unit of work.
// The returned Scope MUST be closed with defer scope.Close().
func (db *DB) AcquireScope(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Scope{Conn: conn}, nil
}
