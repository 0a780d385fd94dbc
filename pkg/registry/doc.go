/*
Package registry implements the process-wide table of active-object handles
that the watchdog scans for liveness.

Registry is a fixed-capacity slice (32 from New, any capacity from
NewWithCapacity) guarded by a sync.RWMutex. It is
effectively append-only in normal operation — mutated only on an active
object's Start/Stop — so a shared reader lock is the right discipline:
Snapshot takes the read lock and returns a point-in-time copy, letting the
watchdog compare heartbeat ages without holding any lock during the scan
itself.

An active object is in the registry iff its worker goroutine is running;
this is enforced structurally by pkg/activeobject owning the only Insert/
Remove call sites, paired with Start/Stop.
*/
package registry
