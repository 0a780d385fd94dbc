/*
Package timer implements the periodic timer service: one pump goroutine
per predefined period, each driving a priority-sorted list of arm/
disarm-gated callbacks against an absolute deadline.

# Periods

There are always MaxTimers periods, {10ms, 100ms, 200ms} by default
(Periods, used by NewService); NewServiceWithPeriods takes other durations.
Each has its own pump, mutex, and condition variable guarding its callback
list and armed count.

# Pump algorithm

Per period, six steps: park while armed count is zero; compute an absolute
next deadline; sleep to that deadline outside the lock (tolerating
spurious/early wakeups by re-checking the clock); reacquire the lock and
invoke every ARMED callback in priority order with the lock released;
self-disarm one-shot entries; and if the pump overran by more than one
period, advance next in whole-period steps until it's back in the future,
bounding catch-up storms on an overrun rather than firing a burst for
every missed tick.

# Stable-address entries

CallbackEntry values are heap-allocated once by AddCallback and never
moved, so a *CallbackEntry handle returned to a caller stays valid across
Arm/Disarm and concurrent list edits on other entries.
*/
package timer
