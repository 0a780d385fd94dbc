package broker

import (
	"context"
	"sync"

	"github.com/cuemby/rtef/pkg/frame"
	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/metrics"
	"github.com/cuemby/rtef/pkg/queue"
)

// PriorityClass selects which ingress queue a Post lands on.
type PriorityClass int

const (
	Primary PriorityClass = iota
	Secondary
)

func (c PriorityClass) String() string {
	if c == Primary {
		return "primary"
	}
	return "secondary"
}

// IngressCapacity is the capacity of each priority ingress queue built by
// New; NewWithCapacity takes any other.
const IngressCapacity = 128

// Subscriber is what the broker calls to deliver a frame to an active
// object. pkg/activeobject's Object satisfies this directly with its
// mailbox-push Post method.
type Subscriber interface {
	Post(ctx context.Context, f frame.Frame) error
}

// Broker is the topic-routed publish/subscribe hub (C4).
type Broker struct {
	mu     sync.Mutex
	topics []topicEntry

	primary   *queue.Queue[frame.Frame]
	secondary *queue.Queue[frame.Frame]

	cancel context.CancelFunc
	done   sync.WaitGroup
}

// New constructs a Broker with the package's default ingress capacity and
// topic-table size.
func New(ctx context.Context) *Broker {
	return NewWithCapacity(ctx, IngressCapacity, MaxTopics)
}

// NewWithCapacity constructs a Broker with deployment-configured ingress
// capacity and topic-table size, starts both pump goroutines, and waits for
// both to signal ready before returning via a channel handshake.
func NewWithCapacity(ctx context.Context, ingressCapacity, maxTopics int) *Broker {
	bctx, cancel := context.WithCancel(ctx)

	b := &Broker{
		topics:    make([]topicEntry, maxTopics),
		primary:   queue.New[frame.Frame](ingressCapacity),
		secondary: queue.New[frame.Frame](ingressCapacity),
		cancel:    cancel,
	}

	primaryReady := make(chan struct{})
	secondaryReady := make(chan struct{})

	b.done.Add(2)
	go b.pump(bctx, Primary, b.primary, primaryReady)
	go b.pump(bctx, Secondary, b.secondary, secondaryReady)

	<-primaryReady
	<-secondaryReady

	return b
}

// Stop cancels both pumps and waits for them to exit.
func (b *Broker) Stop() {
	b.cancel()
	b.primary.Close()
	b.secondary.Close()
	b.done.Wait()
}

// Post pushes a frame onto the selected priority's ingress queue and never
// takes the topic mutex, so a slow subscriber fan-out never blocks a
// publisher.
func (b *Broker) Post(ctx context.Context, f frame.Frame, class PriorityClass) error {
	q := b.primary
	if class == Secondary {
		q = b.secondary
	}
	metrics.BrokerPublishTotal.WithLabelValues(class.String()).Inc()
	err := q.Push(ctx, f)
	metrics.BrokerIngressDepth.WithLabelValues(class.String()).Set(float64(q.Len()))
	return err
}

// Subscribe processes every config in configs, finding or creating its
// topic entry and inserting sub into the first inactive slot. It returns
// the number of configs successfully honored, so a caller can detect a
// partially-failed multi-topic subscription instead of it failing silently.
func (b *Broker) Subscribe(configs []TopicConfig, sub Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	filled := 0
	for _, cfg := range configs {
		entry, ok := findOrCreate(b.topics[:], cfg)
		if !ok {
			continue
		}
		if entry.addSubscriber(sub) {
			filled++
		}
	}

	b.refreshTopicGauge()
	return filled
}

// Unsubscribe deactivates every matching (topic, sub) slot named by
// configs and returns the removal count.
func (b *Broker) Unsubscribe(configs []TopicConfig, sub Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	want := make([]uint32, len(configs))
	for i, cfg := range configs {
		want[i] = canonicalTopic(cfg)
	}

	for i := range b.topics {
		e := &b.topics[i]
		if !e.valid {
			continue
		}
		for j, cfg := range configs {
			if e.kind != cfg.Kind || e.topic != want[j] {
				continue
			}
			if cfg.Kind == Mask && e.mask != cfg.Mask {
				continue
			}
			if e.removeSubscriber(sub) {
				removed++
			}
		}
	}

	return removed
}

// Publish performs the synchronous fan-out called on a pump goroutine: for
// every valid topic whose match kind fires against f.Signal, it snapshots
// the active subscriber list under the mutex, then releases the mutex and
// calls Post on each snapshotted subscriber.
func (b *Broker) Publish(ctx context.Context, f frame.Frame) {
	var matched [][]Subscriber

	b.mu.Lock()
	for i := range b.topics {
		e := &b.topics[i]
		if !e.valid || !e.matches(f.Signal) {
			continue
		}
		matched = append(matched, e.activeSubscribers())
	}
	b.mu.Unlock()

	for _, subs := range matched {
		for _, sub := range subs {
			// Best-effort: publication errors are not surfaced to the
			// publisher; a blocked/cancelled delivery is logged and the
			// pump moves on to the next subscriber.
			if err := sub.Post(ctx, f); err != nil {
				log.WithComponent("broker").Debug().Err(err).Msg("publish: subscriber post failed")
				continue
			}
			metrics.BrokerFanoutTotal.Inc()
		}
	}
}

func (b *Broker) refreshTopicGauge() {
	n := 0
	for i := range b.topics {
		if b.topics[i].valid {
			n++
		}
	}
	metrics.BrokerTopicsTotal.Set(float64(n))
}

func (b *Broker) pump(ctx context.Context, class PriorityClass, q *queue.Queue[frame.Frame], ready chan<- struct{}) {
	defer b.done.Done()
	logger := log.WithComponent("broker").With().Str("class", class.String()).Logger()
	logger.Info().Msg("pump started")
	close(ready)

	for {
		f, err := q.Pop(ctx)
		if err != nil {
			logger.Info().Msg("pump stopped")
			return
		}
		metrics.BrokerIngressDepth.WithLabelValues(class.String()).Set(float64(q.Len()))
		b.Publish(ctx, f)
	}
}
