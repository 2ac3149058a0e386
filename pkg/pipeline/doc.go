/*
Package pipeline implements rokt's request pipeline (C8): the event-driven
acceptor, the bounded priority work queue with backpressure and admission
control, and the fixed worker pool that executes commands and replies.

	accept → read one request → derive priority → admit (Queue)
	                                                    │
	                                     worker pool dequeues, routes to
	                                     pkg/command, applies the per-task
	                                     soft deadline, writes the reply,
	                                     closes the connection

The acceptor never executes command logic and never blocks on command
work (§4.8); in this Go implementation that guarantee comes from spawning
a short-lived goroutine per accepted connection to perform the read and
the admission decision, rather than hand-rolling an epoll readiness loop
— Go's runtime netpoller already plays that role underneath net.Conn, so
the idiomatic translation of "single multiplexing event loop" is the
standard goroutine-per-connection pattern, not a second one built on
syscall.EpollWait. Because that means admission decisions race across
goroutines instead of serializing on one acceptor, Queue.TryPush performs
the length check and the push atomically so the queue can never be admitted
past its configured bound under concurrent callers. See DESIGN.md for the
full reasoning.
*/
package pipeline
