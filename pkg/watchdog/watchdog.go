package watchdog

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/rtef/pkg/activeobject"
	"github.com/cuemby/rtef/pkg/broker"
	"github.com/cuemby/rtef/pkg/frame"
	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/metrics"
	"github.com/cuemby/rtef/pkg/registry"
	"github.com/cuemby/rtef/pkg/timer"
)

// HeartbeatThreshold is the default staleness threshold.
const HeartbeatThreshold = 200 * time.Millisecond

// HeartbeatPeriodTimerID and ScanPeriodTimerID index timer.Periods.
const (
	HeartbeatPeriodTimerID uint8 = 0 // 10ms
	ScanPeriodTimerID      uint8 = 1 // 100ms
)

// CoalesceTicks is how many HeartbeatPeriodTimerID ticks the watchdog lets
// pass before it actually publishes a heartbeat — a tick-count gate in the
// style of the original's "tick++ > 10" against a 10ms pump, publishing on
// every 10th tick, so one heartbeat per 100ms at the default period.
const CoalesceTicks = 10

// heartbeatSignal and alertSignal are the watchdog's two outbound signals.
var (
	heartbeatSignal = frame.MakeSignal(frame.SeverityInfo, frame.StateOperational, frame.TypeMonitoring, 0)
	alertSignal     = frame.MakeSignal(frame.SeverityError, frame.StateError, frame.TypeMonitoring, 1)
)

// Config configures a Watchdog.
type Config struct {
	Name               string
	Publisher          activeobject.Publisher
	Registry           *registry.Registry
	Timers             *timer.Service
	HeartbeatThreshold time.Duration
	// MailboxCapacity overrides the underlying active object's mailbox
	// capacity. Zero means use the package default.
	MailboxCapacity int
}

// Watchdog is the liveness-observing plug-in active object.
type Watchdog struct {
	*activeobject.Object

	registry  *registry.Registry
	timers    *timer.Service
	threshold time.Duration

	mu         sync.Mutex
	tick       int
	heartbeatE *timer.CallbackEntry
	scanE      *timer.CallbackEntry
}

// New constructs a Watchdog. No timer callback is armed until Start.
func New(cfg Config) *Watchdog {
	threshold := cfg.HeartbeatThreshold
	if threshold == 0 {
		threshold = HeartbeatThreshold
	}
	name := cfg.Name
	if name == "" {
		name = "watchdog"
	}

	w := &Watchdog{
		registry:  cfg.Registry,
		timers:    cfg.Timers,
		threshold: threshold,
	}
	w.Object = activeobject.New(activeobject.Config{
		Name:            name,
		Publisher:       cfg.Publisher,
		Registry:        cfg.Registry,
		MailboxCapacity: cfg.MailboxCapacity,
	})
	return w
}

// Start starts the underlying active object and arms both timer callbacks.
func (w *Watchdog) Start(ctx context.Context) error {
	if err := w.Object.Start(ctx); err != nil {
		return err
	}

	hbEntry, err := w.timers.AddCallback(HeartbeatPeriodTimerID, func(cbCtx context.Context) {
		w.onHeartbeatTick(cbCtx)
	}, nil, 0, false)
	if err != nil {
		_ = w.Object.Stop(ctx)
		return err
	}
	scanEntry, err := w.timers.AddCallback(ScanPeriodTimerID, func(cbCtx context.Context) {
		w.onScanTick(cbCtx)
	}, nil, 0, false)
	if err != nil {
		w.timers.RemoveCallback(hbEntry)
		_ = w.Object.Stop(ctx)
		return err
	}

	w.mu.Lock()
	w.heartbeatE = hbEntry
	w.scanE = scanEntry
	w.mu.Unlock()

	w.timers.Arm(hbEntry)
	w.timers.Arm(scanEntry)
	return nil
}

// Stop disarms and removes both timer callbacks, then stops the underlying
// active object.
func (w *Watchdog) Stop(ctx context.Context) error {
	w.mu.Lock()
	hbEntry, scanEntry := w.heartbeatE, w.scanE
	w.heartbeatE, w.scanE = nil, nil
	w.mu.Unlock()

	if hbEntry != nil {
		w.timers.Disarm(hbEntry)
		w.timers.RemoveCallback(hbEntry)
	}
	if scanEntry != nil {
		w.timers.Disarm(scanEntry)
		w.timers.RemoveCallback(scanEntry)
	}

	return w.Object.Stop(ctx)
}

// onHeartbeatTick runs on the 10ms pump; it only publishes once every
// CoalesceTicks ticks.
func (w *Watchdog) onHeartbeatTick(ctx context.Context) {
	w.mu.Lock()
	w.tick++
	fire := w.tick >= CoalesceTicks
	if fire {
		w.tick = 0
	}
	w.mu.Unlock()

	if !fire {
		return
	}

	metrics.WatchdogHeartbeatsTotal.Inc()
	if err := w.Publish(ctx, frame.New(heartbeatSignal, nil), broker.Secondary); err != nil {
		log.WithComponent("watchdog").Debug().Err(err).Msg("heartbeat publish failed")
	}
}

// onScanTick runs on the 100ms pump; it scans the registry for stale
// heartbeats and raises an alert for each one found.
func (w *Watchdog) onScanTick(ctx context.Context) {
	now := time.Now()
	for _, h := range w.registry.Snapshot() {
		ms := h.LastHeartbeatMS.Load()
		if ms == 0 {
			continue
		}
		age := now.Sub(time.UnixMilli(ms))
		if age <= w.threshold {
			continue
		}

		metrics.WatchdogAlertsTotal.Inc()
		log.WithComponent("watchdog").Warn().Str("object", h.Name).Dur("age", age).Msg("stale heartbeat")
		if err := w.Publish(ctx, frame.New(alertSignal, nil), broker.Primary); err != nil {
			log.WithComponent("watchdog").Debug().Err(err).Msg("alert publish failed")
		}
	}
}
