/*
resolver.go - Period selector -> date predicate

PURPOSE:
  Resolve turns a search on the virtual period selector into a predicate on
  the configured date column.

VALUE CLASSIFICATION:
  falsy (nil, false, "", 0, empty list)  negative op -> True, else False
  true                                   negative op -> False, else True
  string                                 ranges whose name matches (op, value)
  integer or list of integers            ranges by id; a negative op looks
                                         up "id not in" instead of negating
                                         the result

  No candidate range gives False, never an error.

NEGATIVE OPERATORS:
  "!=", "not like", "not ilike", "not in"

SEE ALSO:
  - predicate.go: AnyRange builds the disjunction
*/
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/daterange-engine/daterange"
)

// Operators accepted by Resolve.
const (
	OperatorEq       = "="
	OperatorNe       = "!="
	OperatorIn       = "in"
	OperatorNotIn    = "not in"
	OperatorLike     = "like"
	OperatorNotLike  = "not like"
	OperatorILike    = "ilike"
	OperatorNotILike = "not ilike"
)

// IsNegative reports whether op excludes what it names.
func IsNegative(op string) bool {
	switch op {
	case OperatorNe, OperatorNotLike, OperatorNotILike, OperatorNotIn:
		return true
	}
	return false
}

// RangeFinder looks up candidate ranges. daterange.Store satisfies it.
type RangeFinder interface {
	ListRanges(ctx context.Context, filter daterange.RangeFilter) ([]daterange.DateRange, error)
}

// ValueKind classifies a selector value.
type ValueKind string

const (
	KindFalsy   ValueKind = "falsy"
	KindTrue    ValueKind = "true"
	KindName    ValueKind = "name"
	KindIDs     ValueKind = "ids"
	KindInvalid ValueKind = "invalid"
)

// Resolver resolves the period selector of one date column.
type Resolver struct {
	Field  string
	Ranges RangeFinder
}

func NewResolver(field string, ranges RangeFinder) *Resolver {
	return &Resolver{Field: field, Ranges: ranges}
}

// Resolve returns the predicate on r.Field equivalent to (op, value) on the
// period selector.
func (r *Resolver) Resolve(ctx context.Context, op string, value any) (Predicate, error) {
	negative := IsNegative(op)

	kind, name, ids := Classify(value)
	switch kind {
	case KindFalsy:
		if negative {
			return True{}, nil
		}
		return False{}, nil
	case KindTrue:
		if negative {
			return False{}, nil
		}
		return True{}, nil
	case KindInvalid:
		return nil, daterange.NewUserInputError(fmt.Sprintf("unsupported period value %v (%T)", value, value))
	}

	var filter daterange.RangeFilter
	if kind == KindName {
		match := daterange.NameMatch{Op: nameOperator(op), Value: name}
		if err := match.Validate(); err != nil {
			return nil, err
		}
		filter.Name = &match
	} else {
		filter.IDs = ids
		filter.ExcludeIDs = negative
	}

	ranges, err := r.Ranges.ListRanges(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to look up periods: %w", err)
	}
	return AnyRange(r.Field, ranges), nil
}

// nameOperator maps list operators onto their name equivalents.
func nameOperator(op string) string {
	switch op {
	case OperatorIn:
		return daterange.NameEquals
	case OperatorNotIn:
		return daterange.NameNotEquals
	}
	return op
}

// Classify sorts a selector value into its kind. For KindName it returns the
// name, for KindIDs the ids.
func Classify(value any) (ValueKind, string, []daterange.RangeID) {
	switch v := value.(type) {
	case nil:
		return KindFalsy, "", nil
	case bool:
		if v {
			return KindTrue, "", nil
		}
		return KindFalsy, "", nil
	case string:
		if v == "" {
			return KindFalsy, "", nil
		}
		return KindName, v, nil
	case daterange.RangeID:
		return idKind([]daterange.RangeID{v})
	case int:
		return idKind([]daterange.RangeID{daterange.RangeID(v)})
	case int64:
		return idKind([]daterange.RangeID{daterange.RangeID(v)})
	case float64:
		if v != float64(int64(v)) {
			return KindInvalid, "", nil
		}
		return idKind([]daterange.RangeID{daterange.RangeID(v)})
	case []daterange.RangeID:
		return listKind(v)
	case []int:
		ids := make([]daterange.RangeID, len(v))
		for i, id := range v {
			ids[i] = daterange.RangeID(id)
		}
		return listKind(ids)
	case []int64:
		ids := make([]daterange.RangeID, len(v))
		for i, id := range v {
			ids[i] = daterange.RangeID(id)
		}
		return listKind(ids)
	case []any:
		ids := make([]daterange.RangeID, 0, len(v))
		for _, item := range v {
			kind, _, one := Classify(item)
			switch {
			case kind == KindIDs && len(one) == 1:
				ids = append(ids, one[0])
			case kind == KindFalsy && isNumber(item):
				// zero id, no range
			default:
				return KindInvalid, "", nil
			}
		}
		return listKind(ids)
	}
	return KindInvalid, "", nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case daterange.RangeID, int, int64, float64:
		return true
	}
	return false
}

// A single id 0 is falsy.
func idKind(ids []daterange.RangeID) (ValueKind, string, []daterange.RangeID) {
	if ids[0] == 0 {
		return KindFalsy, "", nil
	}
	return KindIDs, "", ids
}

// Zero ids in a list match no range and are dropped.
func listKind(ids []daterange.RangeID) (ValueKind, string, []daterange.RangeID) {
	kept := make([]daterange.RangeID, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return KindFalsy, "", nil
	}
	return KindIDs, "", kept
}

// ParseValue reads a selector value from its query string form:
// "" -> nil, "true"/"false" -> bool, "3" or "3,4" -> ids, else a name.
func ParseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return raw
		}
		ids = append(ids, id)
	}
	if len(ids) == 1 {
		return ids[0]
	}
	return ids
}
