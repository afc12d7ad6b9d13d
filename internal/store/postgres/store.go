// Package postgres is the relational realization of store.Store. Every
// operation is a single statement or a single transaction; dependents of a
// new project are written in batched statements after the parent row
// commits.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

type Store struct {
	db      *sql.DB
	now     func() time.Time
	onClose func()
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: domain.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromPool wraps a pgx pool in database/sql. Closing the store closes the
// pool as well.
func FromPool(pool *pgxpool.Pool, opts ...Option) *Store {
	s := New(stdlib.OpenDBFromPool(pool), opts...)
	s.onClose = pool.Close
	return s
}

// DB exposes the handle for migrations.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// inTx runs fn in a transaction, rolling back on any error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// cascade removes the children of one parent row per store.Cascades.
// Table and column names come from that fixed list, never from input.
func cascade(ctx context.Context, tx execer, parent, id string) error {
	for _, rule := range store.ChildrenOf(parent) {
		q := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, rule.Child, rule.Column)
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return mapError("cascade "+rule.Child, err)
		}
	}
	return nil
}

// deleteRow removes one row by id and reports ErrNotFound when none matched.
func deleteRow(ctx context.Context, ex execer, table, id string) error {
	res, err := ex.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return mapError("delete "+table, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
