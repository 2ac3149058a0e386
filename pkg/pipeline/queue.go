package pipeline

import (
	"container/heap"
	"net"
	"sync"
	"time"
)

// Task is a unit of pending work: an accepted connection, its single
// request line, and the priority derived from the command's leading
// keyword (§3, §4.8).
type Task struct {
	Conn       net.Conn
	Request    string
	Priority   int
	ConnID     string
	EnqueuedAt time.Time

	seq uint64 // assigned at Push, orders equal-priority tasks FIFO
}

// taskHeap implements container/heap.Interface ordering by Priority
// descending, then seq ascending (FIFO among equal priorities, §4.8).
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(*Task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Queue is the bounded priority work queue (§3, §4.8, §5): a mutex plus
// condition variable guarding a container/heap-ordered slice. TryPush
// performs the admission check itself so it can never race with a
// concurrent Push; the caller (server.go) only decides how to reply when
// TryPush reports the queue full, since a full queue must be reported as
// a 503 reply, not silently blocked on.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	heap     taskHeap
	seq      uint64
	closed   bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Len returns the current number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Push enqueues t, assigning it the next FIFO sequence number.
func (q *Queue) Push(t *Task) {
	q.mu.Lock()
	t.seq = q.seq
	q.seq++
	heap.Push(&q.heap, t)
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// TryPush enqueues t only if the current length is below maxSize,
// performing the length check and the push atomically under a single
// lock. It returns the queue depth observed at the time of the decision
// and whether t was admitted. Callers that need to check-then-act on
// queue depth (admission control) must use this instead of pairing Len
// and Push, since concurrent callers checking Len and calling Push
// separately can all observe room and all admit, pushing the queue past
// maxSize (§4.8: "The work queue size is always ≤ max_queue").
func (q *Queue) TryPush(t *Task, maxSize int) (qsize int, admitted bool) {
	q.mu.Lock()
	qsize = len(q.heap)
	if qsize >= maxSize {
		q.mu.Unlock()
		return qsize, false
	}
	t.seq = q.seq
	q.seq++
	heap.Push(&q.heap, t)
	q.mu.Unlock()
	q.notEmpty.Signal()
	return qsize, true
}

// Pop blocks until a task is available or the queue is closed. ok is
// false only once the queue has been closed and drained — the signal a
// worker uses to exit during shutdown.
func (q *Queue) Pop() (t *Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.heap) == 0 {
		if q.closed {
			return nil, false
		}
		q.notEmpty.Wait()
	}
	item := heap.Pop(&q.heap).(*Task)
	return item, true
}

// Close marks the queue closed and wakes every blocked worker so they
// can observe closure once the queue is drained (§4.8 shutdown: "workers
// drain on a condition variable and exit when both the flag is set and
// the queue is empty").
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notEmpty.Broadcast()
}
