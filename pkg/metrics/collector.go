package metrics

import "time"

// Sampler is anything that can report an instantaneous snapshot of the
// request pipeline's queue/worker occupancy. pkg/pipeline's Server
// implements it; tests can supply a stub.
type Sampler interface {
	Stats() (queueDepth, workersBusy int)
}

// Collector periodically samples a Sampler and pushes the result into
// the queue-depth/workers-busy gauges.
type Collector struct {
	sampler Sampler
	stopCh  chan struct{}
}

// NewCollector creates a new metrics collector over sampler.
func NewCollector(sampler Sampler) *Collector {
	return &Collector{
		sampler: sampler,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics on a 2s tick.
func (c *Collector) Start() {
	ticker := time.NewTicker(2 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	depth, busy := c.sampler.Stats()
	QueueDepth.Set(float64(depth))
	WorkersBusy.Set(float64(busy))
}
