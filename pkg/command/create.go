package command

import (
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/storage"
)

// executeCreate implements "CREATE TABLE NAME" (§4.7). The command
// grammar never exposes ROTATE's parameters, so CREATE always produces
// a SIMPLE dataset; ROTATE datasets exist at the catalog level but are
// unreachable from this command language (see DESIGN.md).
func executeCreate(cat *storage.Catalog, rest string) envelope.Envelope {
	tokens := strings.Fields(rest)
	if len(tokens) != 2 || tokens[0] != "TABLE" {
		return errUnrecognized
	}
	status := cat.Create(tokens[1], storage.TypeSimple, nil)
	return envelope.Build(status, "", nil)
}
