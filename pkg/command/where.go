package command

import (
	"fmt"
	"strings"

	"github.com/cuemby/rokt/pkg/predicate"
)

// parseConditions reads "FIELD OP VALUE { (AND|OR) FIELD OP VALUE }" from
// cur, stopping as soon as the next token isn't AND/OR. The caller is
// expected to have already consumed the leading WHERE keyword.
func parseConditions(cur *cursor) ([]predicate.Condition, error) {
	cond, err := parseOneCondition(cur, predicate.LogicNone)
	if err != nil {
		return nil, err
	}
	conds := []predicate.Condition{cond}

	for {
		tok, ok := cur.peek()
		if !ok {
			break
		}
		logic := predicate.Logic(strings.ToUpper(tok))
		if logic != predicate.LogicAnd && logic != predicate.LogicOr {
			break
		}
		cur.next()
		cond, err := parseOneCondition(cur, logic)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func parseOneCondition(cur *cursor, logic predicate.Logic) (predicate.Condition, error) {
	field, ok := cur.next()
	if !ok {
		return predicate.Condition{}, fmt.Errorf("command: WHERE clause incomplete")
	}
	opTok, ok := cur.next()
	if !ok {
		return predicate.Condition{}, fmt.Errorf("command: WHERE clause incomplete")
	}
	value, ok := cur.next()
	if !ok {
		return predicate.Condition{}, fmt.Errorf("command: WHERE clause incomplete")
	}
	return predicate.Condition{
		Field: field,
		Op:    predicate.NormalizeOp(opTok),
		Value: value,
		Logic: logic,
	}, nil
}
