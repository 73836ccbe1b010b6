/*
errors.go - Error kinds for the date range engine

PURPOSE:
  All error types in one place. Callers only rely on the error kind and the
  message text; there are no machine codes.

ERROR KINDS:
  1. User input errors - missing end condition, missing naming scheme,
     invalid name expression, nothing to generate. Reported synchronously,
     nothing is created for the request.
  2. Constraint violations - overlapping ranges, duplicate type per company,
     company mismatch, start after end. Raised by the store at create time
     and surfaced unchanged.
  3. Store errors - anything else. Never suppressed.

SWEEP:
  The autogeneration sweep suppresses kinds 1 and 2 per type (see
  IsSuppressible) and propagates everything else.

SEE ALSO:
  - autogen.go: the sweep
  - store/sqlite/sqlite.go: raises constraint violations
*/
package daterange

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserInput is the kind of every validation failure on a request.
	ErrUserInput = errors.New("invalid input")

	// ErrConstraintViolation is the kind of every record-level constraint failure.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrTypeNotFound is returned when a referenced date range type doesn't exist.
	ErrTypeNotFound = errors.New("date range type not found")

	// ErrRangeNotFound is returned when a referenced date range doesn't exist.
	ErrRangeNotFound = errors.New("date range not found")
)

// User-facing validation messages.
const (
	MsgMissingEndCondition = "please enter an end date, or the number of ranges to generate"
	MsgBothEndConditions   = "please enter either an end date or the number of ranges to generate, not both"
	MsgMissingNaming       = "please set a prefix or an expression to generate the range names"
	MsgNoRanges            = "no ranges to generate with these settings"
	MsgOutOfCalendar       = "the generated ranges would end after the year 9999"
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UserInputError is an actionable validation message.
type UserInputError struct {
	Message string
}

func NewUserInputError(message string) *UserInputError {
	return &UserInputError{Message: message}
}

func (e *UserInputError) Error() string { return e.Message }

func (e *UserInputError) Unwrap() error { return ErrUserInput }

// Constraint names.
const (
	ConstraintOverlap      = "date_range_overlap"
	ConstraintTypeUnique   = "date_range_type_uniq"
	ConstraintCompany      = "date_range_company"
	ConstraintDateOrder    = "date_range_date_order"
	ConstraintTypeRequired = "date_range_type_required"
)

// ConstraintError is raised by a store when a create would break a record
// invariant.
type ConstraintError struct {
	Constraint string
	Message    string
}

func (e *ConstraintError) Error() string { return e.Message }

func (e *ConstraintError) Unwrap() error { return ErrConstraintViolation }

// OverlapError reports two ranges of a no-overlap type sharing days.
func OverlapError(candidate, existing DateRange) *ConstraintError {
	return &ConstraintError{
		Constraint: ConstraintOverlap,
		Message: fmt.Sprintf("%s overlaps %s %s",
			candidate.Name, existing.Name, existing.Interval()),
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsUserInput returns true for validation failures.
func IsUserInput(err error) bool {
	return errors.Is(err, ErrUserInput)
}

// IsConstraint returns true for record constraint violations.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsSuppressible returns true for the kinds the autogeneration sweep skips.
func IsSuppressible(err error) bool {
	return IsUserInput(err) || IsConstraint(err)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTypeNotFound) || errors.Is(err, ErrRangeNotFound)
}
