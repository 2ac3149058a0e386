// Package pipeline implements the request pipeline (C8): an accepting
// side that reads exactly one request per connection and enqueues it,
// a bounded priority queue with admission control and backpressure, and
// a fixed worker pool that routes each task to pkg/command and writes
// back the resulting envelope (§4.8, §5).
package pipeline

import (
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/rokt/pkg/command"
	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/log"
	"github.com/cuemby/rokt/pkg/metrics"
	"github.com/cuemby/rokt/pkg/storage"
)

const (
	// connTimeout is each accepted socket's recv/send deadline (§4.8, §5).
	connTimeout = 10 * time.Second
	// requestBufSize is the whole request: no framing, no continuation
	// reads (§4.8).
	requestBufSize = 2048
	// backpressureSleep is the acceptor's pause when the queue is at
	// least twice the worker count deep (§4.8, §5).
	backpressureSleep = 100 * time.Millisecond
	// taskDeadline is the per-task soft deadline; a command that runs
	// longer has its reply replaced with 504 but is not aborted (§4.8, §5).
	taskDeadline = 5000 * time.Millisecond
	// shutdownPollInterval bounds how long the acceptor blocks in Accept
	// before it re-checks the shutdown flag (§5's periodic-observation
	// suspension point).
	shutdownPollInterval = 1000 * time.Millisecond

	// hardMaxWorkers is the absolute cap regardless of configuration
	// (§4.8).
	hardMaxWorkers = 64
)

// Config configures a Server's admission control and worker pool sizing.
type Config struct {
	MaxWorkers   int
	MaxQueueSize int
}

// Server is the request pipeline: one acceptor plus a fixed worker pool
// sharing a bounded priority Queue (C8).
type Server struct {
	cfg Config
	cat *storage.Catalog

	queue *Queue

	stopping int32 // atomic bool, set by Shutdown
	busy     int32 // atomic count of workers currently executing a task

	wg sync.WaitGroup
}

// New builds a Server. maxWorkers is hard-capped at 64 regardless of cfg
// (§4.8).
func New(cat *storage.Catalog, cfg Config) *Server {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	if cfg.MaxWorkers > hardMaxWorkers {
		cfg.MaxWorkers = hardMaxWorkers
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	return &Server{
		cfg:   cfg,
		cat:   cat,
		queue: NewQueue(),
	}
}

// Stats implements metrics.Sampler.
func (s *Server) Stats() (queueDepth, workersBusy int) {
	return s.queue.Len(), int(atomic.LoadInt32(&s.busy))
}

// Serve starts the worker pool and runs the acceptor loop against ln.
// It blocks until Shutdown is called and returns once every worker has
// drained and exited. Accept errors other than the poll timeout are
// logged and the loop keeps accepting.
func (s *Server) Serve(ln net.Listener) error {
	logger := log.Component("pipeline").Logger()

	for i := 0; i < s.cfg.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.workerLoop(i)
	}

	type deadliner interface {
		SetDeadline(t time.Time) error
	}

	for {
		if atomic.LoadInt32(&s.stopping) != 0 {
			break
		}

		if dl, ok := ln.(deadliner); ok {
			_ = dl.SetDeadline(time.Now().Add(shutdownPollInterval))
		}

		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if atomic.LoadInt32(&s.stopping) != 0 {
				break
			}
			logger.Warn().Err(err).Msg("accept failed")
			continue
		}

		go s.acceptOne(conn)
	}

	s.queue.Close()
	s.wg.Wait()
	return nil
}

// Shutdown signals the acceptor to stop taking new connections and the
// workers to drain and exit once the queue is empty (§4.8).
func (s *Server) Shutdown() {
	atomic.StoreInt32(&s.stopping, 1)
}

// acceptOne performs the acceptor's per-connection responsibilities: set
// timeouts, read the single request, derive priority, and admit it onto
// the queue. It never routes to a command executor — that is the
// worker's job — matching §4.8's "never executes command logic".
func (s *Server) acceptOne(conn net.Conn) {
	connID := uuid.New().String()
	logger := log.Component("pipeline").Conn(connID).Logger()

	if err := conn.SetDeadline(time.Now().Add(connTimeout)); err != nil {
		_ = conn.Close()
		return
	}

	buf := make([]byte, requestBufSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		logger.Debug().Err(err).Msg("closing: read failed or empty request")
		_ = conn.Close()
		return
	}

	request := string(buf[:n])
	priority := command.Priority(request)
	logger.Debug().Str("verb", command.Verb(request)).Int("priority", priority).Msg("accepted")

	s.admit(&Task{
		Conn:       conn,
		Request:    request,
		Priority:   priority,
		ConnID:     connID,
		EnqueuedAt: time.Now(),
	})
}

// admit applies admission control and backpressure before enqueuing t
// (§4.8: reject at qsize >= maxQueue, sleep at qsize >= maxWorkers*2). The
// reject-or-admit decision is made by Queue.TryPush under a single lock,
// so concurrent acceptor goroutines (one per accepted connection, see
// Serve) can never all observe room and all push past MaxQueueSize: only
// the backpressure sleep's own trigger check is a racy heuristic, since
// it just delays an enqueue that TryPush will still bound correctly.
func (s *Server) admit(t *Task) {
	logger := log.Component("pipeline").Conn(t.ConnID).Logger()

	if s.queue.Len() >= s.cfg.MaxWorkers*2 {
		metrics.BackpressureSleepsTotal.Inc()
		time.Sleep(backpressureSleep)
	}

	qsize, admitted := s.queue.TryPush(t, s.cfg.MaxQueueSize)
	if !admitted {
		metrics.AdmissionsRejectedTotal.Inc()
		logger.Warn().Int("qsize", qsize).Msg("admission rejected: queue full")
		s.reply(t.Conn, envelope.Err(envelope.StatusOverloaded))
	}
}

// workerLoop dequeues tasks and executes them until the queue is closed
// and drained.
func (s *Server) workerLoop(id int) {
	defer s.wg.Done()
	for {
		task, ok := s.queue.Pop()
		if !ok {
			return
		}
		atomic.AddInt32(&s.busy, 1)
		s.runTask(task)
		atomic.AddInt32(&s.busy, -1)
	}
}

// runTask routes task to pkg/command and enforces the per-task soft
// deadline. The command always runs to completion — its file I/O is
// never aborted — but if it took longer than taskDeadline the produced
// envelope is discarded and replaced with 504 (§4.8, §5).
func (s *Server) runTask(task *Task) {
	connLogger := log.Component("pipeline").Conn(task.ConnID)
	verb := command.Verb(task.Request)

	timer := metrics.NewTimer()
	env := command.Execute(s.cat, task.Request)
	elapsed := timer.Duration()

	if elapsed > taskDeadline {
		connLogger.Logger().Warn().Str("verb", verb).Dur("elapsed", elapsed).Msg("command exceeded deadline, replying 504")
		env = envelope.Err(envelope.StatusTimeout)
	}

	timer.ObserveDurationVec(metrics.CommandDurationSeconds, verb)
	metrics.CommandsTotal.WithLabelValues(verb, statusLabel(env.Status)).Inc()
	connLogger.Command(verb, env.Status).Logger().Info().Dur("elapsed", elapsed).Msg("command executed")

	s.reply(task.Conn, env)
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}

// reply writes env as the single JSON line response and closes the
// connection (§4.6, §5: "connections are closed by the worker after the
// reply is sent").
func (s *Server) reply(conn net.Conn, env envelope.Envelope) {
	defer conn.Close()
	payload, err := json.Marshal(env)
	if err != nil {
		log.Logger.Error().Err(err).Msg("pipeline: marshal envelope failed")
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(connTimeout))
	_, _ = conn.Write(payload)
}
