package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	pool PgxPool
}

func (r *UserRepository) Create(ctx context.Context, u *storage.User) error {
	const q = `
INSERT INTO users (id, username, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, u.ID, u.Username, u.PasswordHash, u.FirstName, u.LastName)
	if isUniqueViolation(err) {
		return storage.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*storage.User, error) {
	const q = `
SELECT id, username, password_hash, first_name, last_name, created_at
FROM users WHERE username = $1`
	return r.scanUser(r.pool.QueryRow(ctx, q, username))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	const q = `
SELECT id, username, password_hash, first_name, last_name, created_at
FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*storage.User, error) {
	var u storage.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
