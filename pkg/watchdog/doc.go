/*
Package watchdog implements the liveness observer: a plug-in active object
that drives two timer callbacks against the shared registry and broker.

# Heartbeat publication

Every 10ms tick publishes a coalesced heartbeat — a monitoring-type signal
every active object's worker loop recognizes and uses to update its own
LastHeartbeat. Coalescing is done with a tick-counter gate rather than a
wall-clock check: a counter increments each 10ms tick and a heartbeat is
actually published only when it reaches the configured window, giving
"about one heartbeat per rolling 100ms" without querying the clock.

# Staleness scan

Every 100ms tick takes a registry.Snapshot() and compares now minus each
handle's last-heartbeat timestamp against HeartbeatThreshold (200ms by
default); any handle over threshold raises one error-severity alert signal
on the broker. Escalation policy beyond raising the signal is left to
whoever subscribes to it.
*/
package watchdog
