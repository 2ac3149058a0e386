package command

import (
	"fmt"
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/predicate"
	"github.com/cuemby/rokt/pkg/record"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeChange implements "CHANGE NAME = VALUE [WHERE ...] IN NAME"
// (§4.7). The new value is always written as text, regardless of the
// field's prior type. The reply phrase ("OK, mis à jour N ligne(s).") is
// recovered from the original ChangeCommandHandler verbatim.
func executeChange(cat *storage.Catalog, rest string) envelope.Envelope {
	cur := newCursor(strings.Fields(rest))

	field, ok := cur.next()
	if !ok {
		return errUnrecognized
	}
	if tok, ok := cur.next(); !ok || tok != "=" {
		return errUnrecognized
	}
	newValue, ok := cur.next()
	if !ok {
		return errUnrecognized
	}

	var conds []predicate.Condition
	if tok, ok := cur.peek(); ok && tok == "WHERE" {
		cur.next()
		parsed, err := parseConditions(cur)
		if err != nil {
			return errUnrecognized
		}
		conds = parsed
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

	changed := 0
	out := make([]record.Record, len(rows))
	for i, row := range rows {
		match, err := predicate.EvalAll(conds, row)
		if err != nil {
			return envelope.Err(envelope.StatusPredicateFailure)
		}
		if match {
			out[i] = row.Set(field, record.String(newValue))
			changed++
		} else {
			out[i] = row
		}
	}

	if err := df.Overwrite(out); err != nil {
		return envelope.Err(envelope.StatusError)
	}
	return envelope.OKWithReason(fmt.Sprintf("OK, mis à jour %d ligne(s).", changed))
}
