package activeobject

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/rtef/pkg/broker"
	"github.com/cuemby/rtef/pkg/frame"
	"github.com/cuemby/rtef/pkg/fsm"
	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/metrics"
	"github.com/cuemby/rtef/pkg/queue"
	"github.com/cuemby/rtef/pkg/registry"
)

// MailboxCapacity is the default mailbox capacity, used when
// Config.MailboxCapacity is zero or negative.
const MailboxCapacity = 16

// MaxNameLength is the maximum active-object name length (31 chars).
const MaxNameLength = 31

// Publisher is what an active object needs from a broker: posting outgoing
// frames and subscribing itself to topics of interest.
type Publisher interface {
	Post(ctx context.Context, f frame.Frame, class broker.PriorityClass) error
	Subscribe(configs []broker.TopicConfig, sub broker.Subscriber) int
}

// Dispatcher consumes one frame popped from the mailbox. The default
// Dispatcher forwards to the object's FSM; plug-ins override this to add
// behavior beyond table-driven dispatch.
type Dispatcher interface {
	Dispatch(f frame.Frame)
}

// Config configures a new Object.
type Config struct {
	Name         string
	Publisher    Publisher
	Registry     *registry.Registry
	InitialState *fsm.State
	// Dispatcher overrides the default FSM-forwarding dispatch, if set.
	Dispatcher Dispatcher
	// Owner is passed through to the FSM as its Owner field.
	Owner any
	// MailboxCapacity overrides MailboxCapacity for this object's
	// mailbox. Zero means use the package default.
	MailboxCapacity int
}

// Object is the active-object runtime: a name, a mailbox, a worker
// goroutine, and an FSM, reachable only through Post.
type Object struct {
	name         string
	publisher    Publisher
	registry     *registry.Registry
	initialState *fsm.State
	dispatcher   Dispatcher

	mailbox *queue.Queue[frame.Frame]
	fsm     *fsm.FSM

	lastHeartbeatMS atomic.Int64

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs an Object with its mailbox ready; no goroutine runs until
// Start.
func New(cfg Config) *Object {
	name := cfg.Name
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}

	capacity := cfg.MailboxCapacity
	if capacity <= 0 {
		capacity = MailboxCapacity
	}

	o := &Object{
		name:         name,
		publisher:    cfg.Publisher,
		registry:     cfg.Registry,
		initialState: cfg.InitialState,
		dispatcher:   cfg.Dispatcher,
		mailbox:      queue.New[frame.Frame](capacity),
		fsm:          fsm.New(cfg.Owner),
	}
	if o.dispatcher == nil {
		o.dispatcher = fsmDispatcher{name: o.name, fsm: o.fsm}
	}
	return o
}

// Name returns the object's (possibly truncated) name.
func (o *Object) Name() string {
	return o.name
}

// fsmDispatcher is Object's default Dispatcher: forward to the FSM,
// counting actual state transitions for metrics.
type fsmDispatcher struct {
	name string
	fsm  *fsm.FSM
}

func (d fsmDispatcher) Dispatch(f frame.Frame) {
	before := d.fsm.Current
	d.fsm.Handle(f)
	if d.fsm.Current != before {
		metrics.FSMTransitionsTotal.WithLabelValues(d.name).Inc()
	}
}

// Start spawns the worker goroutine, waits for it to signal ready,
// registers the object, and initializes the FSM. Idempotent.
func (o *Object) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return nil
	}

	wctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.done = make(chan struct{})

	ready := make(chan struct{})
	go o.run(wctx, ready)
	<-ready

	if o.registry != nil {
		if err := o.registry.Insert(registry.Handle{Name: o.name, LastHeartbeatMS: &o.lastHeartbeatMS}); err != nil {
			cancel()
			<-o.done
			return fmt.Errorf("activeobject %q: %w", o.name, err)
		}
	}

	o.fsm.Init(o.initialState)
	o.started = true
	return nil
}

// Stop unregisters, cancels the worker, and waits for it to exit.
// Idempotent.
func (o *Object) Stop(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		return nil
	}

	if o.registry != nil {
		o.registry.Remove(o.name)
	}

	o.cancel()
	select {
	case <-o.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	o.started = false
	return nil
}

// Post pushes f into the mailbox; callable from any goroutine, including
// broker pumps. This is the method that satisfies broker.Subscriber.
func (o *Object) Post(ctx context.Context, f frame.Frame) error {
	err := o.mailbox.Push(ctx, f)
	metrics.MailboxPushTotal.WithLabelValues(o.name).Inc()
	metrics.MailboxDepth.WithLabelValues(o.name).Set(float64(o.mailbox.Len()))
	return err
}

// Publish forwards f to the broker on the given priority class.
func (o *Object) Publish(ctx context.Context, f frame.Frame, class broker.PriorityClass) error {
	return o.publisher.Post(ctx, f, class)
}

// Subscribe registers this object as a subscriber for the given topics.
func (o *Object) Subscribe(configs []broker.TopicConfig) int {
	return o.publisher.Subscribe(configs, o)
}

// LastHeartbeat returns the last observed heartbeat time.
func (o *Object) LastHeartbeat() time.Time {
	ms := o.lastHeartbeatMS.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// touchHeartbeat records now as the last-heartbeat time.
func (o *Object) touchHeartbeat() {
	o.lastHeartbeatMS.Store(time.Now().UnixMilli())
}

// run is the worker loop: pop one frame, update heartbeat if it's a
// monitoring signal, dispatch it, repeat. Cancellation only takes effect between
// pops, so no frame is ever dispatched partially.
func (o *Object) run(ctx context.Context, ready chan<- struct{}) {
	defer close(o.done)
	logger := log.WithObject(o.name)
	logger.Info().Msg("worker started")
	close(ready)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker stopped")
			return
		default:
		}

		f, err := o.mailbox.Pop(ctx)
		if err != nil {
			logger.Info().Msg("worker stopped")
			return
		}

		if frame.TypeOf(f.Signal) == frame.TypeMonitoring {
			o.touchHeartbeat()
		}

		o.dispatcher.Dispatch(f)
		metrics.MailboxDepth.WithLabelValues(o.name).Set(float64(o.mailbox.Len()))
	}
}

// Log sinks a human-readable diagnostic through pkg/log; the sink
// implementation is intentionally environment-dependent.
func (o *Object) Log(msg string) {
	log.WithObject(o.name).Info().Msg(msg)
}
