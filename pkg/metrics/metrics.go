package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueDepth is the current size of the bounded priority work queue
	// (§4.8, §5). Sampled periodically by Collector rather than pushed
	// inline on every enqueue/dequeue, matching Collector's ticker-driven
	// sampling of shared state.
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rokt_queue_depth",
			Help: "Current number of tasks waiting in the priority work queue",
		},
	)

	// WorkersBusy is the number of worker goroutines currently executing
	// a command (as opposed to waiting on the queue condition variable).
	WorkersBusy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rokt_workers_busy",
			Help: "Current number of worker goroutines executing a command",
		},
	)

	// AdmissionsRejectedTotal counts 503 admission-control rejections
	// (§4.8: qsize >= maxQueue).
	AdmissionsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rokt_admissions_rejected_total",
			Help: "Total number of connections rejected with 503 at admission",
		},
	)

	// CommandsTotal counts completed commands by verb and final envelope
	// status (including 504 deadline substitutions).
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rokt_commands_total",
			Help: "Total number of commands executed, by verb and reply status",
		},
		[]string{"verb", "status"},
	)

	// CommandDurationSeconds is the wall-clock time a worker spends
	// routing and executing one command, by verb (§4.8's per-task
	// deadline measurement).
	CommandDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rokt_command_duration_seconds",
			Help:    "Command execution duration in seconds, by verb",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"verb"},
	)

	// BackpressureSleepsTotal counts acceptor sleeps triggered by
	// qsize >= maxWorkers*2 (§4.8, §5).
	BackpressureSleepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rokt_backpressure_sleeps_total",
			Help: "Total number of 100ms acceptor sleeps triggered by queue backpressure",
		},
	)

	// CorruptionHealsTotal counts catalog or dataset files that failed to
	// decrypt-and-parse and were silently rewritten to an empty array
	// (§3 invariants, §7). Never surfaced to a client; an operational
	// signal only.
	CorruptionHealsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rokt_corruption_heals_total",
			Help: "Total number of catalog or dataset files silently healed after failing to decrypt or parse",
		},
	)

	// LockWaitSeconds is the time spent blocked acquiring a per-dataset
	// lock (flock against the real filesystem, an in-process mutex in
	// tests) before a read-modify-write cycle begins.
	LockWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rokt_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a per-dataset lock",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(WorkersBusy)
	prometheus.MustRegister(AdmissionsRejectedTotal)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDurationSeconds)
	prometheus.MustRegister(BackpressureSleepsTotal)
	prometheus.MustRegister(CorruptionHealsTotal)
	prometheus.MustRegister(LockWaitSeconds)
}

// lockContentionThreshold is the wait duration above which a lock
// acquisition counts as contended for health/readiness purposes rather
// than ordinary scheduling jitter.
const lockContentionThreshold = 50 * time.Millisecond

var (
	corruptionHeals atomic.Uint64
	lockContentions atomic.Uint64
)

// RecordCorruptionHeal records one catalog or dataset file silently
// rewritten after failing to decrypt or parse (§3, §7). Called by
// pkg/storage at each of its two heal sites.
func RecordCorruptionHeal() {
	corruptionHeals.Add(1)
	CorruptionHealsTotal.Inc()
}

// CorruptionHeals returns the number of corruption-heal events recorded
// since process start, used by health.go to report a degraded status.
func CorruptionHeals() uint64 {
	return corruptionHeals.Load()
}

// RecordLockWait records how long a dataset lock acquisition blocked.
// Waits at or above lockContentionThreshold also increment an internal
// contention counter that health.go surfaces in its degraded status.
func RecordLockWait(d time.Duration) {
	LockWaitSeconds.Observe(d.Seconds())
	if d >= lockContentionThreshold {
		lockContentions.Add(1)
	}
}

// LockContentions returns the number of dataset lock acquisitions that
// blocked for at least lockContentionThreshold since process start.
func LockContentions() uint64 {
	return lockContentions.Load()
}

// Handler returns the Prometheus HTTP handler, bound by cmd/rokt to a
// loopback-only port separate from the client-facing TCP protocol (D1).
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
