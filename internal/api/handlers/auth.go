package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bryanspearman/event-listener-server/internal/api/apierr"
	"github.com/bryanspearman/event-listener-server/internal/auth"
	"github.com/bryanspearman/event-listener-server/internal/domain/users"
	"github.com/bryanspearman/event-listener-server/internal/metrics"
	"github.com/bryanspearman/event-listener-server/internal/storage"
)

// loginFailedMessage is the single message for every login failure a caller
// is allowed to see.
const loginFailedMessage = "Incorrect username or password"

// UserService is the slice of the users domain the auth endpoints need.
type UserService interface {
	Signup(ctx context.Context, input users.SignupInput) (*storage.User, error)
	Authenticate(ctx context.Context, username, password string) (*storage.User, error)
}

type AuthHandler struct {
	Users  UserService
	Tokens *auth.TokenManager
}

func NewAuthHandler(userService UserService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Users: userService, Tokens: tokens}
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type tokenResponse struct {
	AuthToken string `json:"authToken"`
}

// Signup registers a new account. Validation failures are 422s naming the
// offending field; a wrongly typed field reports the expected type.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input users.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			apierr.Validation(w, r, "Incorrect field type: expected string", typeErr.Field)
			return
		case errors.Is(err, io.EOF):
			// An absent body validates like an empty object: every required
			// field is reported missing, starting with username.
		default:
			apierr.BadRequest(w, r, "Invalid request body", err)
			return
		}
	}

	user, err := h.Users.Signup(r.Context(), input)
	if err != nil {
		var verr *users.ValidationError
		if errors.As(err, &verr) {
			apierr.Validation(w, r, verr.Message, verr.Location)
			return
		}
		apierr.Internal(w, r, err)
		return
	}

	metrics.SignupsTotal.Inc()
	writeJSON(w, http.StatusCreated, userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username/password pair for a token. An unknown username
// and a wrong password both produce the same 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, r, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		apierr.BadRequest(w, r, "Missing credentials", nil)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			apierr.Unauthorized(w, r, loginFailedMessage, err)
			return
		}
		apierr.Internal(w, r, err)
		return
	}

	token, err := h.Tokens.Issue(auth.Principal{
		ID:        user.ID.String(),
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		apierr.Internal(w, r, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, tokenResponse{AuthToken: token})
}

// Refresh re-issues the presented token. The new token never expires before
// the old one would have.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		apierr.Unauthorized(w, r, "Unauthorized", err)
		return
	}

	token, err := h.Tokens.Refresh(raw)
	if err != nil {
		apierr.Unauthorized(w, r, "Unauthorized", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AuthToken: token})
}
