package command

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/predicate"
	"github.com/cuemby/rokt/pkg/record"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeGet implements GET's full grammar (§4.7): field/alias
// selection, WHERE, GROUP BY, ORDER BY, LIMIT, and the envelope's
// result/ignored wrapping rule.
func executeGet(cat *storage.Catalog, rest string) envelope.Envelope {
	cur := newCursor(strings.Fields(rest))

	field, ok := cur.next()
	if !ok {
		return errUnrecognized
	}

	var alias string
	if tok, ok := cur.peek(); ok && tok == "AS" {
		cur.next()
		a, ok := cur.next()
		if !ok {
			return errUnrecognized
		}
		alias = a
	}

	if tok, ok := cur.next(); !ok || tok != "IN" {
		return errUnrecognized
	}
	name, ok := cur.next()
	if !ok {
		return errUnrecognized
	}

	var conds []predicate.Condition
	var groupByKey, orderByKey string
	orderDesc := false
	limit := -1
	limitSet := false

	for {
		tok, ok := cur.peek()
		if !ok {
			break
		}
		switch tok {
		case "WHERE":
			cur.next()
			parsed, err := parseConditions(cur)
			if err != nil {
				return errUnrecognized
			}
			conds = parsed
		case "GROUP":
			cur.next()
			if t, ok := cur.next(); !ok || t != "BY" {
				return errUnrecognized
			}
			g, ok := cur.next()
			if !ok {
				return errUnrecognized
			}
			groupByKey = g
		case "ORDER":
			cur.next()
			if t, ok := cur.next(); !ok || t != "BY" {
				return errUnrecognized
			}
			o, ok := cur.next()
			if !ok {
				return errUnrecognized
			}
			orderByKey = o
			if t, ok := cur.peek(); ok && (t == "ASC" || t == "DESC") {
				cur.next()
				orderDesc = t == "DESC"
			}
		case "LIMIT":
			cur.next()
			l, ok := cur.next()
			if !ok {
				return errUnrecognized
			}
			n, err := strconv.Atoi(l)
			if err != nil {
				return errUnrecognized
			}
			limit = n
			limitSet = true
		default:
			return errUnrecognized
		}
	}

	df, status := cat.From(name)
	if status != envelope.StatusOK {
		return envelope.Build(status, "", nil)
	}
	rows, err := df.Select([]string{"*"})
	if err != nil {
		return envelope.Err(envelope.StatusError)
	}

	if len(conds) > 0 {
		var filtered []record.Record
		for _, row := range rows {
			match, err := predicate.EvalAll(conds, row)
			if err != nil {
				return envelope.Err(envelope.StatusPredicateFailure)
			}
			if match {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	var result record.Record
	ignored := 0

	if groupByKey != "" {
		result = groupRows(rows, groupByKey)
	} else {
		if orderByKey != "" {
			rows, ignored = orderRows(rows, orderByKey, orderDesc)
		}
		if limitSet {
			if limit < 0 {
				limit = 0
			}
			rows = record.NewContainer(rows).Head(limit).Raw()
		}
		if field != "*" {
			rows = projectField(rows, field)
		}
		if alias != "" {
			rows = aliasRows(rows, alias)
		}
		result = record.Array(rows)
	}

	usedExtra := len(conds) > 0 || groupByKey != "" || orderByKey != "" || limitSet || alias != ""
	if !usedExtra {
		return envelope.OK(result)
	}

	obj := record.NewObject()
	obj.Set("result", result)
	if ignored != 0 {
		obj.Set("ignored", record.Number(float64(ignored)))
	}
	return envelope.OK(record.FromObject(obj))
}

// groupRows buckets rows by the textual form of their groupKey value;
// rows where groupKey is absent or null land in "undefined" (§9
// supplemental detail).
func groupRows(rows []record.Record, groupKey string) record.Record {
	order := make([]string, 0)
	buckets := make(map[string][]record.Record)

	for _, row := range rows {
		key := "undefined"
		if v, ok := row.Resolve(groupKey); ok && !v.IsNull() {
			key = v.Text()
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], row)
	}

	groups := record.NewObject()
	for _, key := range order {
		groups.Set(key, record.Array(buckets[key]))
	}
	return record.FromObject(groups)
}

// orderRows sorts rows by orderKey stably, numerically if every row's
// value at orderKey is numeric, else by canonical text; rows missing the
// key are dropped and counted. A mix of numeric and textual values at
// orderKey falls back to text ordering rather than panicking or picking
// one row's type over another's (§9 supplemental detail).
func orderRows(rows []record.Record, orderKey string, desc bool) ([]record.Record, int) {
	type entry struct {
		row record.Record
		val record.Record
	}

	var entries []entry
	ignored := 0
	for _, row := range rows {
		v, ok := row.Resolve(orderKey)
		if !ok || v.IsNull() {
			ignored++
			continue
		}
		entries = append(entries, entry{row: row, val: v})
	}

	allNumeric := true
	for _, e := range entries {
		if _, ok := e.val.AsNumber(); !ok {
			allNumeric = false
			break
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if allNumeric {
			ni, _ := entries[i].val.AsNumber()
			nj, _ := entries[j].val.AsNumber()
			if desc {
				return ni > nj
			}
			return ni < nj
		}
		ti, tj := entries[i].val.Text(), entries[j].val.Text()
		if desc {
			return ti > tj
		}
		return ti < tj
	})

	out := make([]record.Record, len(entries))
	for i, e := range entries {
		out[i] = e.row
	}
	return out, ignored
}

// projectField extracts the value at field from every row, skipping rows
// where it's absent (§4.7 GET projection). Delegates to record.Container,
// the spec's own in-memory row-sequence abstraction (C3, §4.3).
func projectField(rows []record.Record, field string) []record.Record {
	return record.NewContainer(rows).Get(field)
}

func aliasRows(rows []record.Record, alias string) []record.Record {
	out := make([]record.Record, len(rows))
	for i, v := range rows {
		obj := record.NewObject()
		obj.Set(alias, v)
		out[i] = record.FromObject(obj)
	}
	return out
}
