// Package resources implements the owner-scoped countdown collections.
// Events and items share one behavior; the record kind selects the
// collection a service instance operates on.
package resources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bryanspearman/event-listener-server/internal/sanitize"
	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// MissingFieldsError lists every required field absent from a payload.
// Create and update share the same required set and the same rejection.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Service manages one kind of owned record.
type Service struct {
	kind   storage.RecordKind
	repo   storage.RecordRepository
	logger zerolog.Logger
}

func NewService(kind storage.RecordKind, repo storage.RecordRepository, logger zerolog.Logger) *Service {
	return &Service{
		kind:   kind,
		repo:   repo,
		logger: logger.With().Str("component", string(kind)+"s").Logger(),
	}
}

// Input carries a create or update payload. Pointer fields distinguish
// absent fields from zero values.
type Input struct {
	Title      *string    `json:"title"`
	TargetDate *time.Time `json:"targetDate"`
	Notes      *string    `json:"notes"`
}

// requiredFields returns the names of required fields missing from the input,
// in a fixed order.
func (in Input) requiredFields() []string {
	var missing []string
	if in.Title == nil {
		missing = append(missing, "title")
	}
	if in.TargetDate == nil {
		missing = append(missing, "targetDate")
	}
	return missing
}

// Create validates and stores a new record for owner. The title is stripped
// to plain text and the notes keep only safe formatting.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, input Input) (*storage.Record, error) {
	if missing := input.requiredFields(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	rec := &storage.Record{
		ID:         s.newID(),
		OwnerID:    owner,
		Kind:       s.kind,
		Title:      sanitize.Text(*input.Title),
		TargetDate: *input.TargetDate,
	}
	if input.Notes != nil {
		rec.Notes = sanitize.HTML(*input.Notes)
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.logger.Info().Str("id", rec.ID).Str("owner_id", owner.String()).Msg("record created")
	return rec, nil
}

// List returns all of owner's records in insertion order.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]storage.Record, error) {
	records, err := s.repo.ListByOwner(ctx, s.kind, owner)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.kind, err)
	}
	return records, nil
}

// Get returns owner's record with the given id. A record owned by someone
// else is indistinguishable from one that does not exist.
func (s *Service) Get(ctx context.Context, owner uuid.UUID, id string) (*storage.Record, error) {
	rec, err := s.repo.Get(ctx, s.kind, id, owner)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.kind, err)
	}
	return rec, nil
}

// Update replaces the record's title and target date and, when provided, its
// notes. Missing required fields are rejected the same way Create rejects
// them.
func (s *Service) Update(ctx context.Context, owner uuid.UUID, id string, input Input) error {
	if missing := input.requiredFields(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	upd := storage.RecordUpdate{
		Title:      sanitize.Text(*input.Title),
		TargetDate: *input.TargetDate,
	}
	if input.Notes != nil {
		notes := sanitize.HTML(*input.Notes)
		upd.Notes = &notes
	}

	if err := s.repo.Update(ctx, s.kind, id, owner, upd); err != nil {
		return fmt.Errorf("update %s: %w", s.kind, err)
	}

	s.logger.Info().Str("id", id).Str("owner_id", owner.String()).Msg("record updated")
	return nil
}

// Delete removes owner's record with the given id.
func (s *Service) Delete(ctx context.Context, owner uuid.UUID, id string) error {
	if err := s.repo.Delete(ctx, s.kind, id, owner); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	s.logger.Info().Str("id", id).Str("owner_id", owner.String()).Msg("record deleted")
	return nil
}

func (s *Service) newID() string {
	return ulid.Make().String()
}
