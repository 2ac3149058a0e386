package command

import (
	"fmt"
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/predicate"
	"github.com/cuemby/rokt/pkg/record"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeRemove implements "REMOVE (WHERE <cond>... | VALUE) IN NAME"
// (§4.7). Bare REMOVE (no WHERE) synthesises `name == VALUE`.
func executeRemove(cat *storage.Catalog, rest string) envelope.Envelope {
	cur := newCursor(strings.Fields(rest))

	tok, ok := cur.peek()
	if !ok {
		return errUnrecognized
	}

	var conds []predicate.Condition
	if tok == "WHERE" {
		cur.next()
		parsed, err := parseConditions(cur)
		if err != nil {
			return errUnrecognized
		}
		conds = parsed
	} else {
		value, _ := cur.next()
		conds = []predicate.Condition{{Field: "name", Op: record.OpEq, Value: value, Logic: predicate.LogicNone}}
	}

	if tok, ok := cur.next(); !ok || tok != "IN" {
		return errUnrecognized
	}
	name, ok := cur.next()
	if !ok || !cur.done() {
		return errUnrecognized
	}

	df, status := cat.From(name)
	if status != envelope.StatusOK {
		return envelope.Build(status, "", nil)
	}

	rows, err := df.Read()
	if err != nil {
		return envelope.Err(envelope.StatusError)
	}

	var kept []record.Record
	removed := 0
	for _, row := range rows {
		match, err := predicate.EvalAll(conds, row)
		if err != nil {
			return envelope.Err(envelope.StatusPredicateFailure)
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, row)
	}

	if err := df.Overwrite(kept); err != nil {
		return envelope.Err(envelope.StatusError)
	}
	return envelope.OKWithReason(fmt.Sprintf("OK, supprimé %d ligne(s).", removed))
}
