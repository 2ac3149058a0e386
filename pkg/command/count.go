package command

import (
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/record"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeCount implements "COUNT NAME [key:value]" (§4.7).
func executeCount(cat *storage.Catalog, rest string) envelope.Envelope {
	tokens := strings.Fields(rest)
	if len(tokens) < 1 || len(tokens) > 2 {
		return errUnrecognized
	}
	name := tokens[0]

	df, status := cat.From(name)
	if status != envelope.StatusOK {
		return envelope.Build(status, "", nil)
	}
	rows, err := df.Read()
	if err != nil {
		return envelope.Err(envelope.StatusError)
	}

	if len(tokens) == 1 {
		return envelope.OK(countResult(len(rows)))
	}

	key, value, ok := strings.Cut(tokens[1], ":")
	if !ok {
		return envelope.Err(envelope.StatusCannotCreateFile)
	}

	count := 0
	for _, row := range rows {
		resolved, present := row.Resolve(key)
		if !present {
			continue
		}
		cell := resolved.Text()
		if s, isString := resolved.AsString(); isString {
			cell = s
		}
		if cell == value {
			count++
		}
	}
	return envelope.OK(countResult(count))
}

func countResult(n int) record.Record {
	obj := record.NewObject()
	obj.Set("count", record.Number(float64(n)))
	return record.FromObject(obj)
}
