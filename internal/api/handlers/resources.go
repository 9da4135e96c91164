package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bryanspearman/event-listener-server/internal/api/apierr"
	"github.com/bryanspearman/event-listener-server/internal/api/middleware"
	"github.com/bryanspearman/event-listener-server/internal/domain/resources"
	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/google/uuid"
)

// ResourceService is the slice of the resources domain the CRUD endpoints
// need. One implementation per record kind.
type ResourceService interface {
	Create(ctx context.Context, owner uuid.UUID, input resources.Input) (*storage.Record, error)
	List(ctx context.Context, owner uuid.UUID) ([]storage.Record, error)
	Get(ctx context.Context, owner uuid.UUID, id string) (*storage.Record, error)
	Update(ctx context.Context, owner uuid.UUID, id string, input resources.Input) error
	Delete(ctx context.Context, owner uuid.UUID, id string) error
}

// ResourcesHandler serves one owned collection. Events and items are two
// instances of it wired to different services.
type ResourcesHandler struct {
	Service ResourceService
}

func NewResourcesHandler(service ResourceService) *ResourcesHandler {
	return &ResourcesHandler{Service: service}
}

type recordResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	TargetDate time.Time `json:"targetDate"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toRecordResponse(rec *storage.Record) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		Title:      rec.Title,
		TargetDate: rec.TargetDate,
		Notes:      rec.Notes,
		CreatedAt:  rec.CreatedAt,
	}
}

func (h *ResourcesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var input resources.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apierr.BadRequest(w, r, "Invalid request body", err)
		return
	}

	rec, err := h.Service.Create(r.Context(), ownerID, input)
	if err != nil {
		var merr *resources.MissingFieldsError
		if errors.As(err, &merr) {
			apierr.BadRequest(w, r, missingFieldsMessage(merr), err)
			return
		}
		apierr.Internal(w, r, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+rec.ID)
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (h *ResourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	records, err := h.Service.List(r.Context(), ownerID)
	if err != nil {
		apierr.Internal(w, r, err)
		return
	}

	payload := make([]recordResponse, 0, len(records))
	for i := range records {
		payload = append(payload, toRecordResponse(&records[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *ResourcesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.Get(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apierr.NotFound(w, r, err)
			return
		}
		apierr.Internal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *ResourcesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var input resources.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apierr.BadRequest(w, r, "Invalid request body", err)
		return
	}

	err := h.Service.Update(r.Context(), ownerID, r.PathValue("id"), input)
	if err != nil {
		var merr *resources.MissingFieldsError
		if errors.As(err, &merr) {
			apierr.BadRequest(w, r, missingFieldsMessage(merr), err)
			return
		}
		if errors.Is(err, storage.ErrNotFound) {
			apierr.NotFound(w, r, err)
			return
		}
		apierr.Internal(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ResourcesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	err := h.Service.Delete(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apierr.NotFound(w, r, err)
			return
		}
		apierr.Internal(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownerFromContext resolves the authenticated caller's user id, writing the
// 401 itself when that fails.
func ownerFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		apierr.Unauthorized(w, r, "Unauthorized", nil)
		return uuid.Nil, false
	}
	ownerID, err := uuid.Parse(principal.ID)
	if err != nil {
		apierr.Unauthorized(w, r, "Unauthorized", err)
		return uuid.Nil, false
	}
	return ownerID, true
}

func missingFieldsMessage(err *resources.MissingFieldsError) string {
	quoted := make([]string, len(err.Fields))
	for i, field := range err.Fields {
		quoted[i] = "`" + field + "`"
	}
	return "Missing " + strings.Join(quoted, ", ") + " in request body"
}
