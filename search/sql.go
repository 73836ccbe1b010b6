package search

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// SQL RENDERING
// =============================================================================

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// QuoteIdent quotes a column reference ("date" or "tbl.date"). Anything that
// is not a plain identifier is rejected.
func QuoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, "."), nil
}

// ToSQL renders p as a WHERE clause fragment with '?' placeholders. Dates
// are bound as YYYY-MM-DD strings.
func ToSQL(p Predicate) (string, []any, error) {
	var (
		b    strings.Builder
		args []any
	)
	if err := writeSQL(&b, &args, p); err != nil {
		return "", nil, err
	}
	return b.String(), args, nil
}

func writeSQL(b *strings.Builder, args *[]any, p Predicate) error {
	switch p := p.(type) {
	case True:
		b.WriteString("1 = 1")
	case False:
		b.WriteString("1 = 0")
	case Comparison:
		col, err := QuoteIdent(p.Field)
		if err != nil {
			return err
		}
		op := p.Op
		if op == OpNe {
			op = "<>"
		}
		switch op {
		case OpEq, "<>", OpLt, OpLe, OpGt, OpGe:
		default:
			return fmt.Errorf("unknown comparison operator %q", p.Op)
		}
		b.WriteString(col + " " + string(op) + " ?")
		*args = append(*args, p.Value.String())
	case And:
		return writeJoined(b, args, " AND ", p.Terms, "1 = 1")
	case Or:
		return writeJoined(b, args, " OR ", p.Terms, "1 = 0")
	default:
		return fmt.Errorf("unknown predicate %T", p)
	}
	return nil
}

func writeJoined(b *strings.Builder, args *[]any, sep string, terms []Predicate, empty string) error {
	if len(terms) == 0 {
		b.WriteString(empty)
		return nil
	}
	b.WriteString("(")
	for i, t := range terms {
		if i > 0 {
			b.WriteString(sep)
		}
		if err := writeSQL(b, args, t); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}
