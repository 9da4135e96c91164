package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RecordRepository struct {
	pool PgxPool
}

func (r *RecordRepository) Create(ctx context.Context, rec *storage.Record) error {
	const q = `
INSERT INTO records (id, owner_id, kind, title, target_date, notes)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, q, rec.ID, rec.OwnerID, string(rec.Kind), rec.Title, rec.TargetDate, rec.Notes)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListByOwner(ctx context.Context, kind storage.RecordKind, owner uuid.UUID) ([]storage.Record, error) {
	const q = `
SELECT id, owner_id, kind, title, target_date, notes, created_at
FROM records WHERE kind = $1 AND owner_id = $2 ORDER BY seq`
	rows, err := r.pool.Query(ctx, q, string(kind), owner)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]storage.Record, 0)
	for rows.Next() {
		var rec storage.Record
		var kindValue string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &kindValue, &rec.Title, &rec.TargetDate, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Kind = storage.RecordKind(kindValue)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (r *RecordRepository) Get(ctx context.Context, kind storage.RecordKind, id string, owner uuid.UUID) (*storage.Record, error) {
	const q = `
SELECT id, owner_id, kind, title, target_date, notes, created_at
FROM records WHERE kind = $1 AND id = $2 AND owner_id = $3`
	var rec storage.Record
	var kindValue string
	err := r.pool.QueryRow(ctx, q, string(kind), id, owner).
		Scan(&rec.ID, &rec.OwnerID, &kindValue, &rec.Title, &rec.TargetDate, &rec.Notes, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	rec.Kind = storage.RecordKind(kindValue)
	return &rec, nil
}

func (r *RecordRepository) Update(ctx context.Context, kind storage.RecordKind, id string, owner uuid.UUID, upd storage.RecordUpdate) error {
	const q = `
UPDATE records SET title = $1, target_date = $2, notes = COALESCE($3, notes)
WHERE kind = $4 AND id = $5 AND owner_id = $6`
	tag, err := r.pool.Exec(ctx, q, upd.Title, upd.TargetDate, upd.Notes, string(kind), id, owner)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, kind storage.RecordKind, id string, owner uuid.UUID) error {
	const q = `DELETE FROM records WHERE kind = $1 AND id = $2 AND owner_id = $3`
	tag, err := r.pool.Exec(ctx, q, string(kind), id, owner)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
