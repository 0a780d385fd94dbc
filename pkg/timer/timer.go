package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/metrics"
)

// MaxTimers is the number of predefined periods.
const MaxTimers = 3

// Periods are the default pump periods used by NewService, indexed by
// timer id.
var Periods = [MaxTimers]time.Duration{
	10 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
}

// Callback runs when an armed entry's pump tick fires.
type Callback func(ctx context.Context)

// CallbackEntry is a stable-address node in one pump's callback list:
// AddCallback heap-allocates it once, and it is never relocated, so the
// *CallbackEntry handle stays valid across Arm/Disarm and concurrent list
// edits for other entries.
type CallbackEntry struct {
	timerID  uint8
	callback Callback
	ctxArg   any
	priority uint8
	oneShot  bool

	pump  *pumpState
	armed bool
	next  *CallbackEntry
}

type pumpState struct {
	timerID    uint8
	period     time.Duration
	mu         sync.Mutex
	cond       *sync.Cond
	head       *CallbackEntry
	armedCount int
	stopped    bool
}

// Service runs the MaxTimers pumps.
type Service struct {
	pumps [MaxTimers]*pumpState
	wg    sync.WaitGroup
}

// NewService starts one pump goroutine per period, using the package's
// default periods.
func NewService(ctx context.Context) *Service {
	return NewServiceWithPeriods(ctx, Periods)
}

// NewServiceWithPeriods starts one pump goroutine per deployment-configured
// period; each parks until a callback on it is armed.
func NewServiceWithPeriods(ctx context.Context, periods [MaxTimers]time.Duration) *Service {
	s := &Service{}
	for i := 0; i < MaxTimers; i++ {
		p := &pumpState{timerID: uint8(i), period: periods[i]}
		p.cond = sync.NewCond(&p.mu)
		s.pumps[i] = p

		s.wg.Add(1)
		go s.pump(ctx, p)
	}
	return s
}

// Stop signals every pump to exit and waits for them to finish.
func (s *Service) Stop() {
	for _, p := range s.pumps {
		p.mu.Lock()
		p.stopped = true
		p.cond.Broadcast()
		p.mu.Unlock()
	}
	s.wg.Wait()
}

// AddCallback inserts a new, initially-disarmed entry into timerID's
// callback list, sorted by descending priority with FIFO ties, and returns
// its handle. Fails if timerID is out of range.
func (s *Service) AddCallback(timerID uint8, cb Callback, ctxArg any, priority uint8, oneShot bool) (*CallbackEntry, error) {
	if int(timerID) >= MaxTimers {
		return nil, fmt.Errorf("timer: id %d out of range (max %d)", timerID, MaxTimers-1)
	}
	p := s.pumps[timerID]

	entry := &CallbackEntry{
		timerID:  timerID,
		callback: cb,
		ctxArg:   ctxArg,
		priority: priority,
		oneShot:  oneShot,
		pump:     p,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	insertSorted(p, entry)
	return entry, nil
}

// insertSorted inserts entry before the first node with strictly lower
// priority, preserving FIFO order among equal priorities. Caller must hold
// p.mu.
func insertSorted(p *pumpState, entry *CallbackEntry) {
	if p.head == nil || p.head.priority < entry.priority {
		entry.next = p.head
		p.head = entry
		return
	}
	cur := p.head
	for cur.next != nil && cur.next.priority >= entry.priority {
		cur = cur.next
	}
	entry.next = cur.next
	cur.next = entry
}

// RemoveCallback removes entry from its pump's list. Func values aren't
// comparable in Go, so unlike the original's "match by function pointer"
// contract, removal here is by entry identity (the handle AddCallback
// returned) — the idiomatic equivalent.
func (s *Service) RemoveCallback(entry *CallbackEntry) bool {
	p := entry.pump
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.head == entry {
		p.head = entry.next
		if entry.armed {
			p.armedCount--
		}
		return true
	}
	for cur := p.head; cur != nil && cur.next != nil; cur = cur.next {
		if cur.next == entry {
			cur.next = entry.next
			if entry.armed {
				p.armedCount--
			}
			return true
		}
	}
	return false
}

// Arm marks entry ARMED and wakes its pump if it was idle.
func (s *Service) Arm(entry *CallbackEntry) {
	p := entry.pump
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry.armed {
		return
	}
	entry.armed = true
	p.armedCount++
	p.cond.Broadcast()
	metrics.TimerCallbacksArmed.WithLabelValues(periodLabel(p.period)).Set(float64(p.armedCount))
}

// Disarm marks entry DISARMED.
func (s *Service) Disarm(entry *CallbackEntry) {
	p := entry.pump
	p.mu.Lock()
	defer p.mu.Unlock()
	if !entry.armed {
		return
	}
	entry.armed = false
	p.armedCount--
	metrics.TimerCallbacksArmed.WithLabelValues(periodLabel(p.period)).Set(float64(p.armedCount))
}

func periodLabel(d time.Duration) string {
	return fmt.Sprintf("%d", d.Milliseconds())
}

// pump implements the six-step algorithm described in the package doc.
func (s *Service) pump(ctx context.Context, p *pumpState) {
	defer s.wg.Done()
	logger := log.WithComponent("timer").With().Dur("period", p.period).Logger()
	logger.Info().Msg("pump started")

	p.mu.Lock()

	// Step 1 (initial): park while armed-count is 0.
	for p.armedCount == 0 && !p.stopped {
		p.cond.Wait()
	}
	if p.stopped {
		p.mu.Unlock()
		logger.Info().Msg("pump stopped")
		return
	}

	// next is a grid-anchored deadline, sampled from the clock exactly
	// once here and advanced only by whole periods from then on — never
	// resampled from time.Now() — so the pump cannot accumulate drift.
	next := time.Now()

	for !p.stopped {
		// Step 2: advance the absolute deadline by one period.
		next = next.Add(p.period)
		p.mu.Unlock()

		// Step 3: sleep to the deadline outside the lock, tolerating
		// spurious/early wakeups.
		sleepUntil(ctx, next)
		if ctx.Err() != nil {
			logger.Info().Msg("pump stopped")
			return
		}

		p.mu.Lock()
		if p.stopped {
			break
		}

		// Step 4: walk the list in priority order, invoking ARMED
		// callbacks with the lock released.
		var toFire []*CallbackEntry
		for cur := p.head; cur != nil; cur = cur.next {
			if cur.armed {
				toFire = append(toFire, cur)
			}
		}
		p.mu.Unlock()

		for _, entry := range toFire {
			timer := metrics.NewTimer()
			entry.callback(ctx)
			timer.ObserveDurationVec(metrics.TimerCallbackDuration, periodLabel(p.period))
			if entry.oneShot {
				s.Disarm(entry)
			}
		}

		// Step 5: if work overran by more than one period, skip ahead —
		// still only ever advancing next, never resampling it.
		now := time.Now()
		for now.Sub(next) > p.period {
			next = next.Add(p.period)
		}

		// Step 6: park again if armed-count has dropped to 0.
		p.mu.Lock()
		for p.armedCount == 0 && !p.stopped {
			p.cond.Wait()
		}
	}

	p.mu.Unlock()
	logger.Info().Msg("pump stopped")
}

// sleepUntil blocks until deadline or ctx is done, re-checking the clock on
// wakeup to tolerate early/spurious returns from the underlying timer.
func sleepUntil(ctx context.Context, deadline time.Time) {
	for {
		d := time.Until(deadline)
		if d <= 0 {
			return
		}
		t := time.NewTimer(d)
		select {
		case <-t.C:
			return
		case <-ctx.Done():
			t.Stop()
			return
		}
	}
}
