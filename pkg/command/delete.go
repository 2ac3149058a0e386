package command

import (
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeDelete implements "DELETE NAME" (§4.7, §4.5 drop).
func executeDelete(cat *storage.Catalog, rest string) envelope.Envelope {
	tokens := strings.Fields(rest)
	if len(tokens) != 1 {
		return errUnrecognized
	}
	status := cat.Drop(tokens[0])
	return envelope.Build(status, "", nil)
}
