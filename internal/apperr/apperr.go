package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ValidationError reports missing or malformed transition input. It is raised
// before any conflict check runs and is never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a candidate interval overlapping an existing fixed
// commitment or session, naming the colliding entity.
type ConflictError struct {
	EntityKind string
	EntityID   uuid.UUID
	Label      string
}

func (e *ConflictError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("conflict with %s %q (%s)", e.EntityKind, e.Label, e.EntityID)
	}
	return fmt.Sprintf("conflict with %s (%s)", e.EntityKind, e.EntityID)
}

// NotFoundError reports an unknown child/topic/session/block id.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (%s)", e.Kind, e.ID)
}

func NotFound(kind string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// MalformedRecurrenceError records an unparseable or unsupported recurrence
// rule. Expansion degrades to a single-occurrence fallback and keeps going;
// this error is surfaced as a warning, not a hard failure.
type MalformedRecurrenceError struct {
	EventID uuid.UUID
	Reason  string
}

func (e *MalformedRecurrenceError) Error() string {
	return fmt.Sprintf("malformed recurrence on event %s: %s", e.EventID, e.Reason)
}

// ConcurrencyConflictError wraps an apply-time re-validation failure during
// redistribution. The single placement is abandoned and the run continues.
type ConcurrencyConflictError struct {
	SessionID uuid.UUID
	Cause     error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("placement for session %s lost to a concurrent change: %v", e.SessionID, e.Cause)
}

func (e *ConcurrencyConflictError) Unwrap() error { return e.Cause }

// CapacityExceededError is advisory by default; it only blocks an operation
// when the caller opts into strict capacity mode.
type CapacityExceededError struct {
	Date             time.Time
	BudgetMinutes    int
	CommittedMinutes int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("day %s over budget: %d committed of %d", e.Date.Format("2006-01-02"), e.CommittedMinutes, e.BudgetMinutes)
}

// HTTPStatus maps the taxonomy onto response codes for the handler layer.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		ke *CapacityExceededError
		qe *ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ce), errors.As(err, &ke), errors.As(err, &qe):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine code used in the error envelope.
func Code(err error) string {
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		ke *CapacityExceededError
		qe *ConcurrencyConflictError
		me *MalformedRecurrenceError
	)
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.As(err, &ce):
		return "conflict"
	case errors.As(err, &ne):
		return "not_found"
	case errors.As(err, &ke):
		return "capacity_exceeded"
	case errors.As(err, &qe):
		return "concurrency_conflict"
	case errors.As(err, &me):
		return "malformed_recurrence"
	default:
		return "internal"
	}
}
