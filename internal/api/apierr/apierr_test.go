package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var body Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/signup", nil)

	Validation(rec, r, "Missing field", "username")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	body := decode(t, rec)
	assert.Equal(t, ReasonValidation, body.Reason)
	assert.Equal(t, "Missing field", body.Message)
	assert.Equal(t, "username", body.Location)
}

func TestUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)

	Unauthorized(rec, r, "Incorrect username or password", errors.New("no such user"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, ReasonAuth, body.Reason)
	assert.Equal(t, "Incorrect username or password", body.Message)
	assert.Empty(t, body.Location)
}

func TestInternal_HidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)

	Internal(rec, r, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, ReasonServer, body.Reason)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/items/nope", nil)

	NotFound(rec, r, errors.New("not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ReasonNotFound, decode(t, rec).Reason)
}
