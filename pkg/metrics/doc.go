/*
Package metrics provides Prometheus metrics and a process health registry for RTEF.

# Metrics Catalog

	rtef_active_objects_total              gauge    objects registered in the registry
	rtef_mailbox_depth{object}              gauge    frames queued in an object's mailbox
	rtef_mailbox_push_total{object}          counter  frames pushed into an object's mailbox
	rtef_broker_ingress_depth{class}         gauge    depth of a broker priority queue
	rtef_broker_publish_total{class}         counter  frames posted to an ingress queue per class
	rtef_broker_fanout_total                 counter  subscriber deliveries performed
	rtef_broker_topics_total                 gauge    valid topic table entries
	rtef_timer_callback_duration_seconds{period_ms}  histogram  callback runtime per period
	rtef_timer_callbacks_armed{period_ms}    gauge    armed callbacks per period
	rtef_watchdog_alerts_total               counter  stale-heartbeat alerts raised
	rtef_watchdog_heartbeats_total           counter  heartbeat frames published
	rtef_fsm_transitions_total{object}       counter  FSM transitions taken

All metrics are registered at package init against the default Prometheus
registry and exposed via Handler(), mounted at /metrics by cmd/rtefd.

# Timer helper

	timer := metrics.NewTimer()
	// ... run the operation ...
	timer.ObserveDurationVec(metrics.TimerCallbackDuration, "10")

# Health registry

Separate from the per-metric series above, this package also keeps a small
process-wide health registry (RegisterComponent/UpdateComponent/GetHealth)
used by the /health, /ready and /live HTTP handlers. Components are named
after the core subsystems — "broker", "timer", "watchdog" — and readiness
requires all three to be registered and currently healthy.
*/
package metrics
