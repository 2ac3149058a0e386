package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubSampler struct {
	depth, busy int
}

func (s stubSampler) Stats() (int, int) { return s.depth, s.busy }

func TestCollectorSamplesGauges(t *testing.T) {
	c := NewCollector(stubSampler{depth: 7, busy: 3})
	c.Start()
	defer c.Stop()

	time.Sleep(50 * time.Millisecond)

	if got := testutil.ToFloat64(QueueDepth); got != 7 {
		t.Errorf("QueueDepth = %v, want 7", got)
	}
	if got := testutil.ToFloat64(WorkersBusy); got != 3 {
		t.Errorf("WorkersBusy = %v, want 3", got)
	}
}
