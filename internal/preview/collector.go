package preview

import (
	"context"
	"sync"

	"mocap-retarget/internal/retarget"
)

// Collector gathers flushed segments during an export and draws them
// afterwards. Observe matches export.SegmentFunc.
type Collector struct {
	mu   sync.Mutex
	cfg  Config
	name func(index int) string
	jobs []Job
}

// NewCollector returns a collector naming each segment's image with name.
func NewCollector(cfg Config, name func(index int) string) *Collector {
	return &Collector{cfg: cfg, name: name}
}

// Observe queues a segment. The exporter hands over frames and never
// touches them again.
func (c *Collector) Observe(index int, frames []retarget.FrameOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = append(c.jobs, Job{Name: c.name(index), Frames: frames})
}

// Pending returns the number of queued segments.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

// Render draws every queued segment and clears the queue.
func (c *Collector) Render(ctx context.Context) []Result {
	c.mu.Lock()
	jobs := c.jobs
	c.jobs = nil
	c.mu.Unlock()
	return Run(ctx, c.cfg, jobs)
}
