/*
Package queue provides a fixed-capacity, blocking FIFO used for every mailbox
and broker ingress queue in RTEF.

Queue[T] is a mutex + two condition variable ring buffer: Push blocks while
full, Pop blocks while empty, and Close releases every blocked caller without
dropping items already enqueued — a closed queue keeps draining until empty.
Capacity is fixed at construction (mailboxes use 16, broker ingress queues
use 128) and ordering is FIFO by push time.

Push and Pop both take a context.Context so a caller can cancel a blocked
call independently of Close, replacing the platform-specific wait primitives
a C implementation would need with one generic implementation.
*/
package queue
