/*
Package activeobject implements the active-object runtime: a named
component with its own goroutine, a bounded mailbox, and an FSM, talking to
everything else only by exchanging frame.Frame values through the broker.

# Virtual dispatch

A capability-set of {start, stop, post, dispatch, log} becomes a Go
interface split in two: Object supplies the shared default implementation
of everything except Dispatch, and a caller-supplied Dispatcher overrides
dispatch for plug-ins that need more than "forward to the FSM" (Object's
own zero-value Dispatcher does exactly that).

# Lifecycle

New constructs an Object with its mailbox ready and no goroutine running.
Start is idempotent: it spawns the worker goroutine, blocks until the
worker signals ready, registers the object with the registry, and then
initializes the FSM with the configured initial state. Stop is idempotent:
it unregisters, cancels the worker's context, and waits for the worker to
exit before returning.

# Cancellation

The worker loop is cancellation-safe: a context check happens only between
mailbox pops, so no frame is ever dispatched partially.

# Heartbeats

Object tracks its own last-heartbeat timestamp in an atomic.Int64 of Unix
milliseconds taken from the wall clock (time.Now().UnixMilli(), not a
monotonic reading), updated whenever the worker observes a monitoring
signal through its normal dispatch path, so the registry can read it
without locking against the worker goroutine.
*/
package activeobject
