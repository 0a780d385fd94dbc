package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry metrics
	ActiveObjectsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtef_active_objects_total",
			Help: "Number of active objects currently registered",
		},
	)

	// Mailbox metrics
	MailboxDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rtef_mailbox_depth",
			Help: "Current number of frames queued in an active object's mailbox",
		},
		[]string{"object"},
	)

	MailboxPushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtef_mailbox_push_total",
			Help: "Total number of frames pushed into an active object's mailbox",
		},
		[]string{"object"},
	)

	// Broker metrics
	BrokerIngressDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rtef_broker_ingress_depth",
			Help: "Current depth of a broker priority ingress queue",
		},
		[]string{"class"},
	)

	BrokerPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtef_broker_publish_total",
			Help: "Total number of frames posted to a broker priority ingress queue",
		},
		[]string{"class"},
	)

	BrokerFanoutTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rtef_broker_fanout_total",
			Help: "Total number of subscriber deliveries performed by publish",
		},
	)

	BrokerTopicsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtef_broker_topics_total",
			Help: "Number of valid topic entries currently held by the broker",
		},
	)

	// Timer metrics
	TimerCallbackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rtef_timer_callback_duration_seconds",
			Help:    "Time taken to run a single timer callback",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"period_ms"},
	)

	TimerCallbacksArmed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rtef_timer_callbacks_armed",
			Help: "Number of armed callbacks per timer period",
		},
		[]string{"period_ms"},
	)

	// Watchdog metrics
	WatchdogAlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rtef_watchdog_alerts_total",
			Help: "Total number of stale-heartbeat alerts raised by the watchdog",
		},
	)

	WatchdogHeartbeatsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rtef_watchdog_heartbeats_total",
			Help: "Total number of heartbeat frames published by the watchdog",
		},
	)

	// FSM metrics
	FSMTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtef_fsm_transitions_total",
			Help: "Total number of FSM state transitions by object",
		},
		[]string{"object"},
	)
)

func init() {
	prometheus.MustRegister(ActiveObjectsTotal)
	prometheus.MustRegister(MailboxDepth)
	prometheus.MustRegister(MailboxPushTotal)
	prometheus.MustRegister(BrokerIngressDepth)
	prometheus.MustRegister(BrokerPublishTotal)
	prometheus.MustRegister(BrokerFanoutTotal)
	prometheus.MustRegister(BrokerTopicsTotal)
	prometheus.MustRegister(TimerCallbackDuration)
	prometheus.MustRegister(TimerCallbacksArmed)
	prometheus.MustRegister(WatchdogAlertsTotal)
	prometheus.MustRegister(WatchdogHeartbeatsTotal)
	prometheus.MustRegister(FSMTransitionsTotal)
}

// Handler returns the Prometheus HTTP handler used by cmd/rtefd's /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations, sampled at the call site and
// observed into a histogram once the operation completes.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
