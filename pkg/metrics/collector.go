package metrics

import (
	"time"

	"github.com/cuemby/rtef/pkg/registry"
)

// Collector periodically samples the registry into rtef_active_objects_total,
// the one series that's cheaper to poll than to update on every Insert/Remove
// call site.
type Collector struct {
	registry *registry.Registry
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector over reg.
func NewCollector(reg *registry.Registry) *Collector {
	return &Collector{
		registry: reg,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic collection.
func (c *Collector) Start() {
	ticker := time.NewTicker(5 * time.Second)
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
	ActiveObjectsTotal.Set(float64(c.registry.Len()))
}
