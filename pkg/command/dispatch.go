package command

import (
	"regexp"
	"strings"

	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/storage"
)

// Executor runs one command's already-dequeued-keyword tail against the
// catalog and produces a reply envelope.
type Executor func(cat *storage.Catalog, rest string) envelope.Envelope

var dispatch = map[string]Executor{
	"CREATE": executeCreate,
	"DELETE": executeDelete,
	"REMOVE": executeRemove,
	"CHANGE": executeChange,
	"EMPTY":  executeEmpty,
	"COUNT":  executeCount,
	"GET":    executeGet,
}

var addKeywordRe = regexp.MustCompile(`(?i)^ADD$`)

var errUnrecognized = envelope.ErrReason(423, "Commande non reconnue")

// Execute tokenises line into a leading keyword and the rest, routes it
// to the matching executor, and returns its envelope. An unmatched or
// malformed command returns the canonical unrecognised-command reply.
func Execute(cat *storage.Catalog, line string) envelope.Envelope {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, ";")
	line = strings.TrimSpace(line)
	if line == "" {
		return errUnrecognized
	}

	head, rest := splitHead(line)

	if exec, ok := dispatch[head]; ok {
		return exec(cat, rest)
	}
	if addKeywordRe.MatchString(head) {
		return executeAdd(cat, rest)
	}
	return errUnrecognized
}

// Verb extracts the leading keyword of a command line, the same token
// Priority and Execute dispatch on. Used by pkg/pipeline for logging and
// metrics labels without re-deriving the tokenisation rule.
func Verb(line string) string {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	head, _ := splitHead(strings.TrimSpace(line))
	return head
}

// Priority derives a task's queue priority from a command's leading
// keyword (§4.8): DDL highest, then DML, then reads, then unknown.
func Priority(line string) int {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	head, _ := splitHead(strings.TrimSpace(line))
	switch {
	case head == "CREATE" || head == "DELETE":
		return 10
	case head == "ADD" || head == "REMOVE" || head == "CHANGE":
		return 5
	case head == "GET" || head == "COUNT" || head == "EMPTY":
		return 1
	default:
		if addKeywordRe.MatchString(head) {
			return 5
		}
		return 0
	}
}
