package wsreactor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cuemby/rtef/pkg/activeobject"
	"github.com/cuemby/rtef/pkg/broker"
	"github.com/cuemby/rtef/pkg/frame"
	"github.com/cuemby/rtef/pkg/fsm"
	"github.com/cuemby/rtef/pkg/health"
	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/registry"
)

// Config configures a Reactor over an already-upgraded websocket
// connection.
type Config struct {
	Name      string
	Publisher activeobject.Publisher
	Registry  *registry.Registry
	Conn      *websocket.Conn
	// FD identifies this connection in the HTTP id subfield; callers
	// typically hand out a small sequential id per connection.
	FD uint32
	// MailboxCapacity overrides the underlying active object's mailbox
	// capacity. Zero means use the package default.
	MailboxCapacity int
}

// Reactor republishes inbound websocket frames as broker signals and
// writes HTTPCommand signals back to the socket; other HTTP-type signals
// it receives are ignored.
type Reactor struct {
	*activeobject.Object

	conn *websocket.Conn
	fd   uint32
	oid  atomic.Uint32

	checker *health.TCPChecker
	status  *health.Status

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	monitorDone chan struct{}
}

// New constructs a Reactor. No goroutine runs and no subscription exists
// until Start.
func New(cfg Config) *Reactor {
	r := &Reactor{
		conn:    cfg.Conn,
		fd:      cfg.FD,
		checker: health.NewTCPChecker(cfg.Conn.RemoteAddr().String()),
		status:  health.NewStatus(),
	}
	r.Object = activeobject.New(activeobject.Config{
		Name:            cfg.Name,
		Publisher:       cfg.Publisher,
		Registry:        cfg.Registry,
		InitialState:    &fsm.State{Name: "connected"},
		Dispatcher:      r,
		MailboxCapacity: cfg.MailboxCapacity,
	})
	return r
}

// Start subscribes to HTTP-type signals, starts the underlying active
// object, and spawns the socket read loop.
func (r *Reactor) Start(ctx context.Context) error {
	r.Subscribe([]broker.TopicConfig{
		{Kind: broker.Mask, Topic: frame.TypeTopic(frame.TypeHTTP), Mask: frame.TypeTopicMask()},
	})
	if err := r.Object.Start(ctx); err != nil {
		return err
	}

	rctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.done = make(chan struct{})
	r.monitorDone = make(chan struct{})
	r.mu.Unlock()

	go r.readLoop(rctx)
	go r.connMonitor(rctx)
	return nil
}

// connCheckInterval is how often connMonitor re-probes the peer's TCP
// reachability between reads; a dead connection usually shows up in
// ReadMessage first, but this catches a half-open peer that never sends.
const connCheckInterval = 30 * time.Second

// connMonitor periodically TCP-probes the peer and tracks consecutive
// failures via health.Status, logging once the connection is judged
// unhealthy. It never tears down the Reactor itself — readLoop already
// does that when ReadMessage errors.
func (r *Reactor) connMonitor(ctx context.Context) {
	defer close(r.monitorDone)
	ticker := time.NewTicker(connCheckInterval)
	defer ticker.Stop()

	cfg := health.DefaultConfig()
	logger := log.WithComponent("wsreactor").With().Uint32("fd", r.fd).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := r.checker.Check(ctx)
			wasHealthy := r.status.Healthy
			r.status.Update(result, cfg)
			if wasHealthy && !r.status.Healthy {
				logger.Warn().Str("peer", r.checker.Address).Msg("connection unhealthy")
			}
		}
	}
}

// Healthy reports whether the peer's last TCP probe succeeded, per
// health.Status's consecutive-failure hysteresis.
func (r *Reactor) Healthy() bool {
	return r.status.Healthy
}

// Done returns a channel closed once the read loop has exited (the peer
// disconnected or Stop was called), so a caller managing many connections
// knows when to clean one up.
func (r *Reactor) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Stop closes the socket, stops the read loop, and stops the underlying
// active object.
func (r *Reactor) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done, monitorDone := r.cancel, r.done, r.monitorDone
	r.mu.Unlock()

	r.conn.Close()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if monitorDone != nil {
		<-monitorDone
	}

	return r.Object.Stop(ctx)
}

// readLoop republishes every inbound websocket message as an HTTP QueryRX
// signal until the connection errors or ctx is cancelled.
func (r *Reactor) readLoop(ctx context.Context) {
	defer close(r.done)
	logger := log.WithComponent("wsreactor").With().Uint32("fd", r.fd).Logger()
	logger.Info().Msg("read loop started")

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			logger.Debug().Err(err).Msg("read loop stopped")
			return
		}

		oid := r.oid.Add(1)
		signal := frame.MakeSignal(frame.SeverityInfo, frame.StateOperational, frame.TypeHTTP,
			frame.HTTPMessageID(frame.HTTPQueryRX, r.fd, oid))
		if err := r.Publish(ctx, frame.New(signal, data), broker.Secondary); err != nil {
			logger.Debug().Err(err).Msg("publish failed")
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// Dispatch writes HTTPCommand signals back to the socket; everything else
// is ignored.
func (r *Reactor) Dispatch(f frame.Frame) {
	if frame.TypeOf(f.Signal) != frame.TypeHTTP {
		return
	}
	if frame.HTTPActionOf(f.Signal) != frame.HTTPCommand {
		return
	}

	if err := r.conn.WriteMessage(websocket.TextMessage, f.Payload[:f.Length]); err != nil {
		log.WithComponent("wsreactor").Warn().Err(err).Msg("write failed")
	}
}
