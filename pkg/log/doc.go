/*
Package log provides rokt's structured logging, built on zerolog.

The server emits one structured line per significant event: connection
accepted, task admitted/rejected (503), task dispatched to a worker,
command completed (or replaced with a 504 on deadline), catalog mutation,
and corrupted data silently healed. Formatting of those lines is
intentionally not part of the wire contract — only that a line is emitted.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	logger := log.Component("pipeline").Conn(connID).Command("GET", 0).Logger()
	logger.Info().Msg("task admitted")

Context chains the fields a single request actually accumulates —
component, connection id, dataset, command verb and status — so every
log line a request produces shares the fields that tie it back together,
instead of each call site rebuilding its own independent child logger.
*/
package log
