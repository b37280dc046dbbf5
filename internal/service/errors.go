package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("caller is not the assigned responder")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrIncidentConflict  = errors.New("incident is no longer open for assignment")
)

// ValidationError carries every violated rule, in evaluation order.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
