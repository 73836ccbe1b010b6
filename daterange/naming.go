/*
naming.go - Names for generated date ranges

PURPOSE:
  Gives every generated interval a name, either prefix + index or the
  result of a user supplied expression.

INDEX:
  1-based, zero padded to the number of digits of the interval count:
  3 intervals -> "1".."3", 10 intervals -> "01".."10".

EXPRESSIONS:
  Evaluated with github.com/expr-lang/expr. The environment exposes exactly
  three read-only bindings and the result must be a string:

    date_start  time.Time  first day of the interval
    date_end    time.Time  last day of the interval
    index       string     the padded index

  Examples:
    "FY" + date_start.Format("2006")
    index + " " + date_start.Format("Jan") + "-" + date_end.Format("Jan 2006")

  A compile error (syntax or non-string result) is a user input error
  naming the problem. The expression is compiled once per generation.

SEE ALSO:
  - generator.go: ComputeRanges
*/
package daterange

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// nameEnv is the whole evaluation scope of a name expression.
type nameEnv struct {
	DateStart time.Time `expr:"date_start"`
	DateEnd   time.Time `expr:"date_end"`
	Index     string    `expr:"index"`
}

// NameExpr is a compiled name expression.
type NameExpr struct {
	source  string
	program *vm.Program
}

// CompileNameExpr compiles src against the naming scope.
func CompileNameExpr(src string) (*NameExpr, error) {
	program, err := expr.Compile(src, expr.Env(nameEnv{}), expr.AsKind(reflect.String))
	if err != nil {
		return nil, NewUserInputError(fmt.Sprintf("invalid name expression: %v", err))
	}
	return &NameExpr{source: src, program: program}, nil
}

// Eval names one interval.
func (n *NameExpr) Eval(iv Interval, index string) (string, error) {
	out, err := expr.Run(n.program, nameEnv{
		DateStart: iv.Start.Time,
		DateEnd:   iv.End.Time,
		Index:     index,
	})
	if err != nil {
		return "", NewUserInputError(fmt.Sprintf("invalid name expression: %v", err))
	}
	name, ok := out.(string)
	if !ok {
		return "", NewUserInputError(fmt.Sprintf("invalid name expression: %q must return a string", n.source))
	}
	return name, nil
}

func (n *NameExpr) String() string { return n.source }

// IndexLabels returns the padded 1-based indexes for n intervals.
func IndexLabels(n int) []string {
	width := len(strconv.Itoa(n))
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%0*d", width, i+1)
	}
	return labels
}

// GenerateNames returns one name per interval, in input order. The
// expression wins when both an expression and a prefix are set.
func GenerateNames(intervals []Interval, nameExpr, namePrefix string) ([]string, error) {
	if nameExpr == "" && namePrefix == "" {
		return nil, NewUserInputError(MsgMissingNaming)
	}

	labels := IndexLabels(len(intervals))
	names := make([]string, len(intervals))

	if nameExpr == "" {
		for i := range intervals {
			names[i] = namePrefix + labels[i]
		}
		return names, nil
	}

	compiled, err := CompileNameExpr(nameExpr)
	if err != nil {
		return nil, err
	}
	for i, iv := range intervals {
		name, err := compiled.Eval(iv, labels[i])
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}
