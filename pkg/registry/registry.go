package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// MaxActiveObjects is the registry capacity New uses; NewWithCapacity takes
// any other.
const MaxActiveObjects = 32

// Handle is what an active object registers itself with. LastHeartbeatMS
// holds a Unix millisecond timestamp from the wall clock (not a monotonic
// reading), updated atomically by the object
// itself whenever it observes a heartbeat signal, so the watchdog's scan
// goroutine can read it without locking against the object's worker.
type Handle struct {
	Name            string
	LastHeartbeatMS *atomic.Int64
}

// Registry is the fixed-capacity table of active-object handles.
type Registry struct {
	mu       sync.RWMutex
	handles  []Handle
	capacity int
}

// New creates an empty registry at the package's default capacity.
func New() *Registry {
	return NewWithCapacity(MaxActiveObjects)
}

// NewWithCapacity creates an empty registry with a deployment-configured
// capacity.
func NewWithCapacity(capacity int) *Registry {
	return &Registry{handles: make([]Handle, 0, capacity), capacity: capacity}
}

// Insert appends a handle. Fails if the registry is already at capacity.
func (r *Registry) Insert(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.handles) >= r.capacity {
		return fmt.Errorf("registry: full (capacity %d)", r.capacity)
	}
	r.handles = append(r.handles, h)
	return nil
}

// Remove deletes the first handle with the given name via swap-with-last;
// registration order carries no meaning elsewhere in the runtime.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, h := range r.handles {
		if h.Name != name {
			continue
		}
		last := len(r.handles) - 1
		r.handles[i] = r.handles[last]
		r.handles = r.handles[:last]
		return
	}
}

// Snapshot returns a point-in-time copy of every registered handle, so the
// watchdog never holds the registry lock during its heartbeat scan.
func (r *Registry) Snapshot() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handle, len(r.handles))
	copy(out, r.handles)
	return out
}

// Len returns the current number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
