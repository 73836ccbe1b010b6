/*
Package search resolves the virtual "period" selector into predicates over a
real date column.

PURPOSE:
  Host records (anything with a date) can be filtered by the date range
  their date falls into. The selector has no stored value: it is rewritten
  into a predicate on the date column before the store sees the query.

KEY CONCEPTS IN THIS FILE (predicate.go):
  - Predicate: a tagged union of Comparison, And, Or, True and False
  - Match: evaluates a predicate against a record's values

RENDERERS:
  - domain.go: nested prefix form ("|", "&", leaves)
  - sql.go:    parameterized WHERE clause

SEE ALSO:
  - resolver.go: builds predicates from (operator, value)
  - containment.go: record id -> containing range id
*/
package search

import (
	"fmt"

	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// PREDICATE AST
// =============================================================================

// Predicate is one of Comparison, And, Or, True or False.
type Predicate interface {
	isPredicate()
}

// CompareOp is a comparison operator on a date column.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Comparison compares a date column against a constant.
type Comparison struct {
	Field string
	Op    CompareOp
	Value daterange.Date
}

// And holds when every term holds. An empty And is true.
type And struct {
	Terms []Predicate
}

// Or holds when any term holds. An empty Or is false.
type Or struct {
	Terms []Predicate
}

// True matches every record.
type True struct{}

// False matches no record.
type False struct{}

func (Comparison) isPredicate() {}
func (And) isPredicate()        {}
func (Or) isPredicate()         {}
func (True) isPredicate()       {}
func (False) isPredicate()      {}

// Within is field >= iv.Start AND field <= iv.End.
func Within(field string, iv daterange.Interval) And {
	return And{Terms: []Predicate{
		Comparison{Field: field, Op: OpGe, Value: iv.Start},
		Comparison{Field: field, Op: OpLe, Value: iv.End},
	}}
}

// AnyRange is the disjunction of Within(field, r) over ranges, in order.
// No ranges gives False.
func AnyRange(field string, ranges []daterange.DateRange) Predicate {
	if len(ranges) == 0 {
		return False{}
	}
	terms := make([]Predicate, len(ranges))
	for i, r := range ranges {
		terms[i] = Within(field, r.Interval())
	}
	return Or{Terms: terms}
}

// =============================================================================
// EVALUATION
// =============================================================================

// Record gives the date value of a field. A missing or zero date never
// satisfies a comparison.
type Record map[string]daterange.Date

// Match evaluates p against rec.
func Match(p Predicate, rec Record) (bool, error) {
	switch p := p.(type) {
	case True:
		return true, nil
	case False:
		return false, nil
	case Comparison:
		v, ok := rec[p.Field]
		if !ok || v.IsZero() {
			return false, nil
		}
		return compare(v, p.Op, p.Value)
	case And:
		for _, t := range p.Terms {
			ok, err := Match(t, rec)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, t := range p.Terms {
			ok, err := Match(t, rec)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("unknown predicate %T", p)
}

func compare(v daterange.Date, op CompareOp, c daterange.Date) (bool, error) {
	switch op {
	case OpEq:
		return v.Equal(c), nil
	case OpNe:
		return !v.Equal(c), nil
	case OpLt:
		return v.Before(c), nil
	case OpLe:
		return v.BeforeOrEqual(c), nil
	case OpGt:
		return v.After(c), nil
	case OpGe:
		return v.AfterOrEqual(c), nil
	}
	return false, fmt.Errorf("unknown comparison operator %q", op)
}
