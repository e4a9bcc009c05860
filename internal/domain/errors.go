package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Error codes raised by the gamification engine.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInternal             = "INTERNAL_ERROR"
	CodeNoActiveSeason       = "NO_ACTIVE_SEASON"
	CodeMultipleSeasons      = "MULTIPLE_ACTIVE_SEASONS"
	CodeMultipleMainGroups   = "MULTIPLE_MAIN_GROUPS"
	CodeInvalidDuration      = "INVALID_DURATION"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeRateLimited          = "RATE_LIMITED"
)

// HasCode reports whether err wraps an *AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: 403}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}

// Gamification errors.

// ErrNoActiveSeason is raised when the user's employer has no season covering today.
func ErrNoActiveSeason(clientID string) *AppError {
	return &AppError{Code: CodeNoActiveSeason, Message: fmt.Sprintf("client %s has no active season", clientID), Status: 422}
}

// ErrMultipleActiveSeasons signals a tenant data-integrity violation. Never resolved by picking one.
func ErrMultipleActiveSeasons(clientID string, count int) *AppError {
	return &AppError{
		Code:    CodeMultipleSeasons,
		Message: fmt.Sprintf("client %s has %d active seasons", clientID, count),
		Status:  409,
	}
}

// ErrMultipleMainGroups is raised when a user belongs to more than one group flagged main.
func ErrMultipleMainGroups(userID string, count int) *AppError {
	return &AppError{
		Code:    CodeMultipleMainGroups,
		Message: fmt.Sprintf("user %s belongs to %d main groups", userID, count),
		Status:  409,
	}
}

func ErrInvalidDuration(msg string) *AppError {
	return &AppError{Code: CodeInvalidDuration, Message: msg, Status: 400}
}

// ErrInvalidConfiguration wraps a settings validation failure. Scoring is refused until reload.
func ErrInvalidConfiguration(cause error) *AppError {
	return &AppError{Code: CodeInvalidConfiguration, Message: "gamification settings are invalid", Status: 503, Cause: cause}
}
