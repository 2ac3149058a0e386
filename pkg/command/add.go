package command

import (
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/record"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeAdd implements "ADD {...} [UNIQUE field] IN dataset" (§4.7).
// The leading ADD keyword has already been stripped by Execute; rest
// starts at the embedded JSON object.
func executeAdd(cat *storage.Catalog, rest string) envelope.Envelope {
	objText, remainder, err := extractJSONObject(rest)
	if err != nil {
		return envelope.Err(envelope.StatusBadJSON)
	}
	row, err := record.Parse([]byte(objText))
	if err != nil {
		return envelope.Err(envelope.StatusBadJSON)
	}
	obj, ok := row.AsObject()
	if !ok {
		return envelope.Err(envelope.StatusBadJSON)
	}

	cur := newCursor(strings.Fields(remainder))

	var uniqueField string
	if tok, ok := cur.peek(); ok && tok == "UNIQUE" {
		cur.next()
		field, ok := cur.next()
		if !ok {
			return errUnrecognized
		}
		uniqueField = field
	}

	if tok, ok := cur.next(); !ok || tok != "IN" {
		return errUnrecognized
	}
	name, ok := cur.next()
	if !ok || !cur.done() {
		return errUnrecognized
	}

	if uniqueField != "" {
		if _, present := obj.Get(uniqueField); !present {
			return envelope.Err(envelope.StatusBadParam)
		}
	}

	df, status := cat.From(name)
	if status != envelope.StatusOK {
		return envelope.Build(status, "", nil)
	}

	if uniqueField != "" {
		newValue, _ := row.Resolve(uniqueField)
		rows, err := df.Read()
		if err != nil {
			return envelope.Err(envelope.StatusError)
		}
		for _, existing := range rows {
			existingValue, present := existing.Resolve(uniqueField)
			if present && existingValue.Text() == newValue.Text() {
				return envelope.Err(envelope.StatusAlreadyExists)
			}
		}
	}

	if err := df.Insert(row); err != nil {
		return envelope.Err(envelope.StatusError)
	}
	return envelope.Err(envelope.StatusInserted)
}
