// Package users handles account creation and credential verification.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bryanspearman/event-listener-server/internal/auth"
	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidCredentials is the only authentication failure this package
// reports. An unknown username and a wrong password are indistinguishable
// through it.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// Service handles signup and authentication.
type Service struct {
	repo      storage.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

func NewService(repo storage.UserRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: newSignupValidator(),
		logger:    logger.With().Str("component", "users").Logger(),
	}
}

// SignupInput carries the raw signup payload. Pointer fields distinguish
// absent fields from empty strings so validation can report each case with
// its own message.
type SignupInput struct {
	Username  *string `json:"username" validate:"required,trimmed,min=1"`
	Password  *string `json:"password" validate:"required,trimmed,min=10,max=72"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// Signup validates input, hashes the password, and creates the user.
// Rule violations come back as *ValidationError; a duplicate username maps to
// one as well, so the handler has a single failure shape to translate.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*storage.User, error) {
	if err := s.validateSignup(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(*input.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	user := &storage.User{
		ID:           uuid.New(),
		Username:     *input.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(deref(input.FirstName)),
		LastName:     strings.TrimSpace(deref(input.LastName)),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, &ValidationError{Message: "Username already taken", Location: "username"}
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.logger.Info().Str("username", user.Username).Msg("user created")
	return user, nil
}

// Authenticate verifies a username/password pair. A missing user and a
// password mismatch both return ErrInvalidCredentials; only store failures
// other than not-found surface as distinct errors.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*storage.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Remove deletes a user account. Administrative path only.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	s.logger.Info().Str("user_id", id.String()).Msg("user removed")
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
