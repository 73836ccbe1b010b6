package search

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// PREFIX DOMAIN
// =============================================================================

// Leaf is one (left, operator, right) term of a prefix domain. It encodes as
// a 3-element JSON array.
type Leaf struct {
	Left  any
	Op    string
	Right any
}

func (l Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{l.Left, l.Op, l.Right})
}

// Domain is a predicate in nested prefix notation: "&" and "|" are binary
// operators followed by their two operands, everything else is a Leaf.
//
//	Or(And(a, b), And(c, d)) -> ["|", "&", a, b, "&", c, d]
type Domain []any

// Prefix operators.
const (
	DomainAnd = "&"
	DomainOr  = "|"
)

var (
	trueLeaf  = Leaf{Left: 1, Op: "=", Right: 1}
	falseLeaf = Leaf{Left: 0, Op: "=", Right: 1}
)

// ToDomain renders p. An n-ary And or Or gives n-1 operators followed by
// the operands, so a disjunction of ranges renders as n-1 "|" and then
// "&", (field >= start), (field <= end) per range.
func ToDomain(p Predicate) (Domain, error) {
	var out Domain
	if err := appendDomain(&out, p); err != nil {
		return nil, err
	}
	return out, nil
}

func appendDomain(out *Domain, p Predicate) error {
	switch p := p.(type) {
	case True:
		*out = append(*out, trueLeaf)
	case False:
		*out = append(*out, falseLeaf)
	case Comparison:
		*out = append(*out, Leaf{Left: p.Field, Op: string(p.Op), Right: p.Value})
	case And:
		return appendNary(out, DomainAnd, p.Terms, trueLeaf)
	case Or:
		return appendNary(out, DomainOr, p.Terms, falseLeaf)
	default:
		return fmt.Errorf("unknown predicate %T", p)
	}
	return nil
}

func appendNary(out *Domain, op string, terms []Predicate, empty Leaf) error {
	if len(terms) == 0 {
		*out = append(*out, empty)
		return nil
	}
	for i := 1; i < len(terms); i++ {
		*out = append(*out, op)
	}
	for _, t := range terms {
		if err := appendDomain(out, t); err != nil {
			return err
		}
	}
	return nil
}
