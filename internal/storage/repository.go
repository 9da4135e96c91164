// Package storage defines the persistence models and repository contracts.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no row. For owner-scoped
	// lookups this includes rows that exist but belong to another user.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when a user insert hits the unique
	// username constraint.
	ErrUsernameTaken = errors.New("username already taken")
)

// User is a credential record. PasswordHash never appears in serialized
// output; only the domain layer reads it.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

// RecordKind discriminates the owned collections sharing the records table.
type RecordKind string

const (
	KindEvent RecordKind = "event"
	KindItem  RecordKind = "item"
)

// Record is an owned countdown entry (an event or an item).
type Record struct {
	ID         string
	OwnerID    uuid.UUID
	Kind       RecordKind
	Title      string
	TargetDate time.Time
	Notes      string
	CreatedAt  time.Time
}

// RecordUpdate carries the mutable fields for an update. Title and TargetDate
// are always set (both are required on update); Notes is optional.
type RecordUpdate struct {
	Title      string
	TargetDate time.Time
	Notes      *string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// Delete removes a user. Exposed for administrative cleanup only; there
	// is no HTTP surface for it.
	Delete(ctx context.Context, id uuid.UUID) error
}

type RecordRepository interface {
	Create(ctx context.Context, rec *Record) error
	// ListByOwner returns owner's records of the given kind in insertion order.
	ListByOwner(ctx context.Context, kind RecordKind, owner uuid.UUID) ([]Record, error)
	Get(ctx context.Context, kind RecordKind, id string, owner uuid.UUID) (*Record, error)
	Update(ctx context.Context, kind RecordKind, id string, owner uuid.UUID, upd RecordUpdate) error
	Delete(ctx context.Context, kind RecordKind, id string, owner uuid.UUID) error
}

// Repository groups data access by domain.
type Repository interface {
	Users() UserRepository
	Records() RecordRepository
}
