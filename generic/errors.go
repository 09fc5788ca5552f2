/*
errors.go - Centralized error types for the billing and BAS engines

PURPOSE:
  All error types in one place for consistency and discoverability.
  Core packages return these; only the HTTP boundary turns them into
  status codes.

ERROR CATEGORIES:
  1. Validation - malformed or missing input, rejected before storage access
  2. Conflict   - overlapping rate ranges, duplicate unique values
  3. Reference  - unknown GST code / employee / client used by an invoice
  4. Integrity  - deleting an invoice that receipts still point at
  5. Not found  - requested id does not exist

USAGE:
  if errors.Is(err, generic.ErrConflict) {
      // 409
  }
  var conflict *generic.RateConflictError
  if errors.As(err, &conflict) {
      log.Printf("clashes with %s", conflict.Existing.Range())
  }

SEE ALSO:
  - api/errors.go: Maps these to HTTP responses
*/
package generic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrReference  = errors.New("unknown reference")
	ErrIntegrity  = errors.New("integrity guard")
	ErrNotFound   = errors.New("not found")

	// ErrDuplicate is returned by stores when a unique constraint rejects a write.
	ErrDuplicate = fmt.Errorf("%w: duplicate value", ErrConflict)
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError lists field-level problems.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a problem with field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RateConflictError describes the existing rate a candidate range collides with.
type RateConflictError struct {
	ClientID   string
	EmployeeID string
	Candidate  DateRange
	Existing   RateRecord
}

func (e *RateConflictError) Error() string {
	return fmt.Sprintf("overlapping rate for this employee: %s overlaps existing rate %s (%s)",
		e.Candidate, e.Existing.ID, e.Existing.Range())
}

func (e *RateConflictError) Unwrap() error { return ErrConflict }

// MissingGstCodeError identifies the invoice line naming an unknown GST code.
type MissingGstCodeError struct {
	Line      int
	GstCodeID string
}

func (e *MissingGstCodeError) Error() string {
	return fmt.Sprintf("line %d: GST code %s does not exist", e.Line, e.GstCodeID)
}

func (e *MissingGstCodeError) Unwrap() error { return ErrReference }

// UnresolvableRateError is returned when neither a client rate nor an
// employee base rate exists for a line.
type UnresolvableRateError struct {
	Line       int
	EmployeeID string
}

func (e *UnresolvableRateError) Error() string {
	return fmt.Sprintf("line %d: unable to resolve rate for employee %s", e.Line, e.EmployeeID)
}

func (e *UnresolvableRateError) Unwrap() error { return ErrReference }

// ReferenceError is a generic unknown-id reference (client, employee).
type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Kind, e.ID)
}

func (e *ReferenceError) Unwrap() error { return ErrReference }

// IntegrityError blocks a delete that would orphan dependent rows.
type IntegrityError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("cannot delete %s %s: %s", e.Kind, e.ID, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to caller input rather than storage.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrReference) ||
		errors.Is(err, ErrIntegrity)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
