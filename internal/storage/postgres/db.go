// Package postgres contains the PostgreSQL implementations of the storage
// repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of pgxpool.Pool the repositories use. It is also
// implemented by pgxmock.PgxPoolIface, which the tests rely on.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

// Connect opens a pgx pool for the given URL and wraps it in a Repository.
func Connect(ctx context.Context, url string, maxConns int) (*Repository, *pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	repo, err := NewRepository(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool, nil
}

func (r *Repository) Users() storage.UserRepository {
	return &UserRepository{pool: r.pool}
}

func (r *Repository) Records() storage.RecordRepository {
	return &RecordRepository{pool: r.pool}
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
