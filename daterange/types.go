/*
Package daterange provides the date range engine.

PURPOSE:
  Date ranges are named, inclusive day intervals grouped by type (fiscal
  years, quarters, pay periods...). This package holds the records, the
  interval generator and its naming scheme, the defaults derived from a
  type, and the autogeneration sweep. Searching other records by period
  lives in package search.

KEY CONCEPTS IN THIS FILE (types.go):
  - DateRangeType: a category of ranges with generation defaults and an
    overlap policy
  - DateRange: one named interval of a type
  - GeneratorRequest: the transient input of a bulk generation

COMPANY SCOPE:
  CompanyID 0 means "global" on types and "no company" on ranges.

SEE ALSO:
  - generator.go: interval generation
  - naming.go: range names
  - autogen.go: Generator service and the sweep
*/
package daterange

import "fmt"

// =============================================================================
// IDS
// =============================================================================

type (
	TypeID    int64
	RangeID   int64
	CompanyID int64
)

// =============================================================================
// DATE RANGE TYPE
// =============================================================================

type DateRangeType struct {
	ID           TypeID
	Name         string
	Code         string
	CompanyID    CompanyID
	AllowOverlap bool
	Active       bool

	// Defaults for generating date ranges
	NameExpr      string
	NamePrefix    string
	DurationCount int
	UnitOfTime    Unit

	// AutogenerationDateStart only applies when no range of the type exists yet.
	AutogenerationDateStart Date
	AutogenerationCount     int
	AutogenerationUnit      Unit
}

// Normalize applies the form rules of a type: an expression wins over a
// prefix.
func (t *DateRangeType) Normalize() {
	if t.NameExpr != "" && t.NamePrefix != "" {
		t.NamePrefix = ""
	}
}

// Autogenerates reports whether the type takes part in the sweep.
func (t DateRangeType) Autogenerates() bool {
	return t.Active && t.AutogenerationCount > 0 && t.AutogenerationUnit != ""
}

// Validate checks the fields a store can't express as SQL constraints.
func (t DateRangeType) Validate() error {
	if t.Name == "" {
		return NewUserInputError("date range type name is required")
	}
	if t.UnitOfTime != "" && !t.UnitOfTime.Valid() {
		return NewUserInputError("unknown unit of time " + string(t.UnitOfTime))
	}
	if t.AutogenerationUnit != "" && !t.AutogenerationUnit.Valid() {
		return NewUserInputError("unknown autogeneration unit " + string(t.AutogenerationUnit))
	}
	if t.DurationCount < 0 || t.AutogenerationCount < 0 {
		return NewUserInputError("durations can't be negative")
	}
	if t.DurationCount > MaxIntervals || t.AutogenerationCount > MaxIntervals {
		return NewUserInputError(fmt.Sprintf("durations can't exceed %d units", MaxIntervals))
	}
	return nil
}

// =============================================================================
// DATE RANGE
// =============================================================================

type DateRange struct {
	ID        RangeID
	Name      string
	DateStart Date
	DateEnd   Date
	TypeID    TypeID
	CompanyID CompanyID
}

func (r DateRange) Interval() Interval {
	return Interval{Start: r.DateStart, End: r.DateEnd}
}

// Validate checks the record invariants before a create.
func (r DateRange) Validate() error {
	if r.Name == "" {
		return NewUserInputError("date range name is required")
	}
	if r.TypeID == 0 {
		return &ConstraintError{Constraint: ConstraintTypeRequired, Message: "date range type is required"}
	}
	if r.DateStart.IsZero() || r.DateEnd.IsZero() {
		return NewUserInputError("date range start and end are required")
	}
	if r.DateStart.After(r.DateEnd) {
		return &ConstraintError{
			Constraint: ConstraintDateOrder,
			Message:    r.Name + " is not a valid range (" + r.DateStart.String() + " > " + r.DateEnd.String() + ")",
		}
	}
	return nil
}

// =============================================================================
// GENERATOR REQUEST
// =============================================================================

// GeneratorRequest is the transient input of one bulk generation.
// Exactly one of DateEnd and Count must be set.
type GeneratorRequest struct {
	DateStart     Date
	DateEnd       Date
	Count         int
	UnitOfTime    Unit
	DurationCount int
	NameExpr      string
	NamePrefix    string
	TypeID        TypeID
	CompanyID     CompanyID
}

// CheckCompany enforces that a request and its type share the company when
// both have one.
func (r GeneratorRequest) CheckCompany(t DateRangeType) error {
	if r.CompanyID != 0 && t.CompanyID != 0 && r.CompanyID != t.CompanyID {
		return &ConstraintError{
			Constraint: ConstraintCompany,
			Message:    "the company in the date range generator and in the date range type must be the same",
		}
	}
	return nil
}
