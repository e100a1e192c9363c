/*
errors.go - Centralized error types for the schedule engine

PURPOSE:
  All sentinel errors in one place. Generation itself never returns errors
  (it degrades to empty results, see provider.go); errors here come from the
  repository boundary and the exception workflow.

USAGE:
  if errors.Is(err, schedule.ErrTemplateNotFound) { ... }
*/
package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when a referenced template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRuleNotFound is returned when a referenced recurrence rule does not exist.
	ErrRuleNotFound = errors.New("recurrence rule not found")

	// ErrAssignmentNotFound is returned when a referenced assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrExceptionNotFound is returned when a referenced exception does not exist.
	ErrExceptionNotFound = errors.New("exception not found")

	// ErrDuplicateID is returned when saving a record whose ID already exists.
	ErrDuplicateID = errors.New("duplicate id")
)

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrExceptionNotFound)
}

// NotFoundError carries the ID that failed to resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "template":
		return ErrTemplateNotFound
	case "recurrence rule":
		return ErrRuleNotFound
	case "assignment":
		return ErrAssignmentNotFound
	case "exception":
		return ErrExceptionNotFound
	}
	return nil
}
