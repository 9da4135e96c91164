package users

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bryanspearman/event-listener-server/internal/auth"
	"github.com/go-playground/validator/v10"
)

// ValidationError reports a single signup rule violation. Location names the
// offending field; Message matches the API's published wording exactly.
type ValidationError struct {
	Message  string
	Location string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

func newSignupValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// trimmed rejects values with leading or trailing whitespace. Runs before
	// the length rules so " user " reports the whitespace problem, not length.
	_ = v.RegisterValidation("trimmed", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == strings.TrimSpace(value)
	})

	return v
}

func (s *Service) validateSignup(input SignupInput) error {
	err := s.validator.Struct(input)
	if err == nil {
		// The max rule counts runes, but bcrypt reads at most 72 bytes, so
		// the ceiling is enforced in bytes here too.
		if input.Password != nil && len(*input.Password) > auth.MaxPasswordBytes {
			return &ValidationError{
				Message:  "Must be at most 72 characters long",
				Location: "password",
			}
		}
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("validate signup: %w", err)
	}

	// One violation at a time, in field declaration order.
	fe := fieldErrors[0]
	return &ValidationError{
		Message:  messageFor(fe),
		Location: fe.Field(),
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing field"
	case "trimmed":
		return "Cannot start or end with whitespace"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long", fe.Param())
	default:
		return "Invalid value"
	}
}
