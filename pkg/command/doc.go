/*
Package command tokenises and executes rokt's eight-verb command
language (CREATE, DELETE, ADD, REMOVE, CHANGE, GET, COUNT, EMPTY) and
produces a pkg/envelope reply for each.

Dispatch is a map from the command's leading keyword to an Executor,
built once at package init rather than a chain of handlers each trying
the command in turn. Every verb but ADD matches its keyword exactly
(case-sensitive); ADD is matched by a small case-insensitive regular
expression against the leading keyword only, so "add" and "Add" route
to the same executor. A command whose keyword matches
nothing, or whose grammar the matched executor rejects, gets the single
fallback reply: status 423, reason "Commande non reconnue".
*/
package command
