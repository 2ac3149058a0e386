package predicate

import (
	"fmt"
	"strings"

	"github.com/cuemby/rokt/pkg/record"
)

// Logic is how a condition combines with the accumulated result of the
// conditions before it. Empty only on the first condition in a list.
type Logic string

const (
	LogicNone Logic = ""
	LogicAnd  Logic = "AND"
	LogicOr   Logic = "OR"
)

// Condition is one predicate inside a WHERE clause.
type Condition struct {
	Field string
	Op    record.Op
	Value string
	Logic Logic
}

// NormalizeOp maps the grammar's IS/NOT synonyms onto ==/!= (§3, §4.2).
func NormalizeOp(raw string) record.Op {
	switch strings.ToUpper(raw) {
	case "IS":
		return record.OpEq
	case "NOT":
		return record.OpNeq
	case "HAS":
		return record.OpHas
	default:
		return record.Op(raw)
	}
}

// Eval evaluates a single condition against a row. Resolution failure
// (missing path segment, or a resolved value that is null/absent) makes
// the condition false without error; a value is resolved but the
// comparison is the wrong shape for its type (e.g. HAS on a scalar), Eval
// returns an error the caller should surface as status 3.
func (c Condition) Eval(row record.Record) (bool, error) {
	resolved, ok := row.Resolve(c.Field)
	if !ok || resolved.IsNull() {
		return false, nil
	}
	return record.Compare(resolved, c.Op, c.Value)
}

// EvalAll evaluates a condition list left to right: the first condition's
// Logic is ignored (conventionally empty), and each subsequent condition
// combines with the running accumulator via AND/OR, left-associative, no
// precedence. An empty list evaluates to true.
func EvalAll(conditions []Condition, row record.Record) (bool, error) {
	if len(conditions) == 0 {
		return true, nil
	}

	acc, err := conditions[0].Eval(row)
	if err != nil {
		return false, err
	}

	for i := 1; i < len(conditions); i++ {
		next, err := conditions[i].Eval(row)
		if err != nil {
			return false, err
		}
		switch conditions[i].Logic {
		case LogicOr:
			acc = acc || next
		case LogicAnd, LogicNone:
			acc = acc && next
		default:
			return false, fmt.Errorf("predicate: unknown logic %q", conditions[i].Logic)
		}
	}

	return acc, nil
}
