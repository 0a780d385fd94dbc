/*
Package broker implements the topic-routed publish/subscribe broker:
a fixed-capacity topic table behind one mutex, two priority ingress queues
each drained by its own pump goroutine, and synchronous fan-out from a pump
to subscriber mailboxes.

# Priority model

PRIMARY and SECONDARY each own a bounded queue.Queue[frame.Frame] (capacity
128) and a dedicated pump goroutine; there is no work stealing and no
reordering across classes, and FIFO holds within a class.

# Topic matching

EXACT fires iff frame.Signal == entry.Topic. MASK fires iff entry.Mask != 0
and (frame.Signal & entry.Mask) == (entry.Topic & entry.Mask). The stored
Topic for a MASK entry is canonicalized to Topic&Mask exactly once, at
find-or-create time; every later lookup and match compares against that
canonical form rather than re-masking both sides on every call.

# Deadlock avoidance

Publish holds the topic mutex only long enough to find matching topics and
snapshot their active subscribers; it releases the mutex before calling
Post on any of them, so one stalled subscriber mailbox cannot stall the
whole pump or block other Publish callers.

# Subscribe/Unsubscribe

Subscribe processes every config in the slice and returns the count of
slots successfully filled, matching the shape Unsubscribe already had,
rather than silently honoring only the first config per call.
*/
package broker
