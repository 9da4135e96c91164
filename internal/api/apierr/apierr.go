// Package apierr writes the API's JSON error bodies. It is the only place
// that turns domain errors into HTTP responses, so every handler fails with
// the same shape.
package apierr

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Reasons used in error bodies. Clients branch on these, not on messages.
const (
	ReasonValidation = "ValidationError"
	ReasonAuth       = "AuthError"
	ReasonBadRequest = "BadRequest"
	ReasonNotFound   = "NotFound"
	ReasonServer     = "ServerError"
)

// Error is the wire shape of every non-2xx JSON body.
type Error struct {
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// Write emits body with the given status and logs err from the request
// context logger, 4xx at warn and 5xx at error.
func Write(w http.ResponseWriter, r *http.Request, status int, body Error, err error) {
	if err != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("reason", body.Reason).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(body.Message)
	}

	payload, merr := json.Marshal(body)
	if merr != nil {
		http.Error(w, `{"reason":"ServerError","message":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// Validation writes a 422 naming the offending field.
func Validation(w http.ResponseWriter, r *http.Request, message, location string) {
	Write(w, r, http.StatusUnprocessableEntity, Error{
		Reason:   ReasonValidation,
		Message:  message,
		Location: location,
	}, nil)
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, r *http.Request, message string, err error) {
	Write(w, r, http.StatusBadRequest, Error{Reason: ReasonBadRequest, Message: message}, err)
}

// Unauthorized writes a 401. Callers pass the same message for every failure
// mode they cannot let a caller distinguish.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string, err error) {
	Write(w, r, http.StatusUnauthorized, Error{Reason: ReasonAuth, Message: message}, err)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, r *http.Request, err error) {
	Write(w, r, http.StatusNotFound, Error{Reason: ReasonNotFound, Message: "Not Found"}, err)
}

// Internal writes a 500 with a fixed message; err carries the detail into the
// logs only.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	Write(w, r, http.StatusInternalServerError, Error{Reason: ReasonServer, Message: "Internal Server Error"}, err)
}
