package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanspearman/event-listener-server/internal/config"
	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory storage.Repository for router-level tests.
type memRepo struct {
	mu      sync.Mutex
	users   map[string]*storage.User
	records []storage.Record
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*storage.User)}
}

func (m *memRepo) Users() storage.UserRepository     { return (*memUsers)(m) }
func (m *memRepo) Records() storage.RecordRepository { return (*memRecords)(m) }

func (m *memRepo) Ping(ctx context.Context) error { return nil }

type memUsers memRepo

func (m *memUsers) Create(ctx context.Context, u *storage.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return storage.ErrUsernameTaken
	}
	copied := *u
	m.users[u.Username] = &copied
	return nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, u := range m.users {
		if u.ID == id {
			delete(m.users, name)
			return nil
		}
	}
	return storage.ErrNotFound
}

type memRecords memRepo

func (m *memRecords) Create(ctx context.Context, rec *storage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *memRecords) ListByOwner(ctx context.Context, kind storage.RecordKind, owner uuid.UUID) ([]storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []storage.Record{}
	for _, rec := range m.records {
		if rec.Kind == kind && rec.OwnerID == owner {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRecords) Get(ctx context.Context, kind storage.RecordKind, id string, owner uuid.UUID) (*storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.Kind == kind && rec.ID == id && rec.OwnerID == owner {
			copied := rec
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memRecords) Update(ctx context.Context, kind storage.RecordKind, id string, owner uuid.UUID, upd storage.RecordUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, rec := range m.records {
		if rec.Kind == kind && rec.ID == id && rec.OwnerID == owner {
			m.records[i].Title = upd.Title
			m.records[i].TargetDate = upd.TargetDate
			if upd.Notes != nil {
				m.records[i].Notes = *upd.Notes
			}
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memRecords) Delete(ctx context.Context, kind storage.RecordKind, id string, owner uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, rec := range m.records {
		if rec.Kind == kind && rec.ID == id && rec.OwnerID == owner {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-test-secret-test-1234",
			TokenTTL:  7 * 24 * time.Hour,
			Issuer:    "countdown",
		},
	}
	repo := newMemRepo()
	return NewRouter(cfg, zerolog.Nop(), repo, repo)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec
}

func signupAndLogin(t *testing.T, handler http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/signup",
		`{"username":"`+username+`","password":"examplePass"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/login",
		`{"username":"`+username+`","password":"examplePass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		AuthToken string `json:"authToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AuthToken)
	return body.AuthToken
}

func TestRouter_SignupLoginCreateList(t *testing.T) {
	handler := newTestRouter(t)
	token := signupAndLogin(t, handler, "exampleUser")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/items",
		`{"title":"new laptop","targetDate":"2027-01-01T00:00:00Z"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/items", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "new laptop", list[0].Title)

	// Items do not leak into the events collection.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/events", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestRouter_OwnershipScoping(t *testing.T) {
	handler := newTestRouter(t)
	alice := signupAndLogin(t, handler, "alice")
	bob := signupAndLogin(t, handler, "bob")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/events",
		`{"title":"launch","targetDate":"2027-01-01T00:00:00Z"}`, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Bob cannot see, update, or delete Alice's event by id.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/events/"+created.ID, "", bob)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, handler, http.MethodPut, "/api/v1/events/"+created.ID,
		`{"title":"hijacked","targetDate":"2027-01-01T00:00:00Z"}`, bob)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/events/"+created.ID, "", bob)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Alice still can.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/events/"+created.ID, "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/events/"+created.ID, "", alice)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_UpdateAndDeleteLifecycle(t *testing.T) {
	handler := newTestRouter(t)
	token := signupAndLogin(t, handler, "exampleUser")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/items",
		`{"title":"bike","targetDate":"2027-06-01T00:00:00Z","notes":"red one"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/items/"+created.ID,
		`{"title":"bike","targetDate":"2027-07-01T00:00:00Z"}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Omitted notes survive an update.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/items/"+created.ID, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Notes      string    `json:"notes"`
		TargetDate time.Time `json:"targetDate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "red one", got.Notes)
	assert.Equal(t, 7, int(got.TargetDate.Month()))

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/items/"+created.ID, "", token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/items/"+created.ID, "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ProtectedEndpointsRequireToken(t *testing.T) {
	handler := newTestRouter(t)

	for _, path := range []string{"/api/v1/events", "/api/v1/items"} {
		rec := doJSON(t, handler, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_Refresh(t *testing.T) {
	handler := newTestRouter(t)
	token := signupAndLogin(t, handler, "exampleUser")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/refresh", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		AuthToken string `json:"authToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AuthToken)

	// The refreshed token works on protected endpoints.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/events", "", body.AuthToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_DuplicateUsername(t *testing.T) {
	handler := newTestRouter(t)
	signupAndLogin(t, handler, "exampleUser")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/signup",
		`{"username":"exampleUser","password":"examplePass"}`, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already taken")
}

func TestRouter_SignupWithoutBody(t *testing.T) {
	handler := newTestRouter(t)

	// A missing body is treated as an empty payload and fails validation,
	// reporting the first missing field.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/signup", "", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Missing field")
	assert.Contains(t, rec.Body.String(), "username")
}

func TestRouter_UnknownPathIsJSON404(t *testing.T) {
	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rec.Body.String(), "NotFound")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodDelete, "/api/v1/signup", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestRouter_Health(t *testing.T) {
	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
