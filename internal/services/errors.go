package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/validator"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrCourseNotFound  = fmt.Errorf("course %w", ErrNotFound)
	ErrChapterNotFound = fmt.Errorf("chapter %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrUnauthorized     = errors.New("unauthorized")
	ErrAnonymous        = fmt.Errorf("anonymous caller: %w", ErrUnauthorized)
	ErrForbidden        = errors.New("forbidden")
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationErrors is returned as-is so handlers can expose per-field details
type ValidationErrors = validator.ValidationErrors

// PermissionError describes a denied action on a resource
type PermissionError struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func NewPermissionError(resource, action, reason string) *PermissionError {
	return &PermissionError{Resource: resource, Action: action, Reason: reason}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s %s: %s", e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}
