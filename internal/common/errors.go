package common

import (
	"errors"
	"net/http"
)

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Memory errors
	ErrMemoryNotFound   = errors.New("memory not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidSort      = errors.New("invalid sort, expected date, likes or title")
	ErrInvalidImageFile = errors.New("file is not a supported image")

	// Comment errors
	ErrCommentNotFound      = errors.New("comment not found")
	ErrEmptyComment         = errors.New("comment text is required")
	ErrInvalidParentComment = errors.New("parent comment must be a top-level comment on the same memory")

	// Reaction errors
	ErrInvalidReactionType = errors.New("invalid reaction type")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("no user found")
	ErrUserAlreadyExists  = errors.New("email already in use")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Infrastructure
	ErrStorageDisabled = errors.New("image storage is not configured")
)

// StatusFor maps a business error to its HTTP status.
// Unknown errors are internal server errors.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrMemoryNotFound),
		errors.Is(err, ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidSort),
		errors.Is(err, ErrInvalidImageFile),
		errors.Is(err, ErrEmptyComment),
		errors.Is(err, ErrInvalidParentComment),
		errors.Is(err, ErrInvalidReactionType):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
