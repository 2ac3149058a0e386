package command

import (
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeEmpty implements "EMPTY NAME": overwrite the dataset with []
// (§4.7).
func executeEmpty(cat *storage.Catalog, rest string) envelope.Envelope {
	tokens := strings.Fields(rest)
	if len(tokens) != 1 {
		return errUnrecognized
	}
	df, status := cat.From(tokens[0])
	if status != envelope.StatusOK {
		return envelope.Build(status, "", nil)
	}
	if err := df.Overwrite(nil); err != nil {
		return envelope.Err(envelope.StatusError)
	}
	return envelope.Err(envelope.StatusOK)
}
