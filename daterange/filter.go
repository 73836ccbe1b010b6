package daterange

import (
	"fmt"
	"strings"
)

// Name operators understood by RangeFilter.Name.
const (
	NameEquals    = "="
	NameNotEquals = "!="
	NameLike      = "like"
	NameNotLike   = "not like"
	NameILike     = "ilike"
	NameNotILike  = "not ilike"
)

// NameMatch is a text condition on range names. like/ilike match a
// substring; ilike ignores case.
type NameMatch struct {
	Op    string
	Value string
}

// Validate rejects unknown operators.
func (m NameMatch) Validate() error {
	switch m.Op {
	case NameEquals, NameNotEquals, NameLike, NameNotLike, NameILike, NameNotILike:
		return nil
	}
	return NewUserInputError(fmt.Sprintf("unsupported operator %q on range names", m.Op))
}

// Negative reports whether the operator excludes matches.
func (m NameMatch) Negative() bool {
	return m.Op == NameNotEquals || m.Op == NameNotLike || m.Op == NameNotILike
}

// Match applies the condition to one name.
func (m NameMatch) Match(name string) bool {
	var hit bool
	switch m.Op {
	case NameEquals, NameNotEquals:
		hit = name == m.Value
	case NameLike, NameNotLike:
		hit = strings.Contains(name, m.Value)
	case NameILike, NameNotILike:
		hit = strings.Contains(strings.ToLower(name), strings.ToLower(m.Value))
	}
	if m.Negative() {
		return !hit
	}
	return hit
}
