package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/interview"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists     *ErrEmailAlreadyExists
		badCredentials  *ErrInvalidCredentials
		userNotFound    *ErrUserNotFound
		badRequest      *ErrValidation
		notFound        *interview.NotFoundError
		invalid         *interview.ValidationError
		generation      *interview.GenerationFormatError
		evaluation      *interview.EvaluationFormatError
		providerTimeout *interview.ProviderTimeoutError
		providerFailure *interview.ProviderError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badRequest), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &providerTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &generation), errors.As(err, &evaluation), errors.As(err, &providerFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
