package broker

// MatchKind selects how a topic entry's Topic/Mask fields are interpreted.
type MatchKind int

const (
	Exact MatchKind = iota
	Mask
)

// MaxTopics is the topic-table capacity of a broker built by New;
// NewWithCapacity takes any other.
const MaxTopics = 32

// MaxSubscribersPerTopic bounds each topic entry's subscriber list.
const MaxSubscribersPerTopic = 32

// TopicConfig is what a caller passes to Subscribe/Unsubscribe to describe
// one topic of interest.
type TopicConfig struct {
	Kind  MatchKind
	Topic uint32
	Mask  uint32
}

// canonicalTopic returns the stored-form topic for a config: MASK entries
// are canonicalized to Topic&Mask once, here, so every later lookup and
// match compares against the same canonical value.
func canonicalTopic(cfg TopicConfig) uint32 {
	if cfg.Kind == Mask {
		return cfg.Topic & cfg.Mask
	}
	return cfg.Topic
}

type subscriberSlot struct {
	sub    Subscriber
	active bool
}

type topicEntry struct {
	kind        MatchKind
	topic       uint32
	mask        uint32
	subscribers []subscriberSlot
	valid       bool
}

func (e *topicEntry) matches(signal uint32) bool {
	switch e.kind {
	case Exact:
		return signal == e.topic
	case Mask:
		return e.mask != 0 && (signal&e.mask) == e.topic
	default:
		return false
	}
}

// findOrCreate locates an existing entry for cfg, or allocates the first
// free slot. Returns (entry, ok); ok is false iff the table is full, in
// which case no partial effect occurs.
func findOrCreate(table []topicEntry, cfg TopicConfig) (*topicEntry, bool) {
	want := canonicalTopic(cfg)

	for i := range table {
		e := &table[i]
		if !e.valid || e.kind != cfg.Kind {
			continue
		}
		if e.kind == Mask && e.mask != cfg.Mask {
			continue
		}
		if e.topic == want {
			return e, true
		}
	}

	for i := range table {
		e := &table[i]
		if e.valid {
			continue
		}
		*e = topicEntry{
			kind:        cfg.Kind,
			topic:       want,
			mask:        cfg.Mask,
			subscribers: make([]subscriberSlot, 0, MaxSubscribersPerTopic),
			valid:       true,
		}
		return e, true
	}

	return nil, false
}

// addSubscriber inserts sub into the first inactive slot, or appends one if
// the table has room; idempotent if sub is already an active subscriber
// (Invariant: a (topic, subscriber) pair appears at most once).
func (e *topicEntry) addSubscriber(sub Subscriber) bool {
	for i := range e.subscribers {
		if e.subscribers[i].sub == sub {
			e.subscribers[i].active = true
			return true
		}
	}
	for i := range e.subscribers {
		if !e.subscribers[i].active {
			e.subscribers[i] = subscriberSlot{sub: sub, active: true}
			return true
		}
	}
	if len(e.subscribers) >= MaxSubscribersPerTopic {
		return false
	}
	e.subscribers = append(e.subscribers, subscriberSlot{sub: sub, active: true})
	return true
}

// removeSubscriber deactivates sub's slot, if present, and reports whether
// it found one to deactivate.
func (e *topicEntry) removeSubscriber(sub Subscriber) bool {
	for i := range e.subscribers {
		if e.subscribers[i].sub == sub && e.subscribers[i].active {
			e.subscribers[i].active = false
			return true
		}
	}
	return false
}

// activeSubscribers returns a snapshot of currently-active subscribers.
func (e *topicEntry) activeSubscribers() []Subscriber {
	out := make([]Subscriber, 0, len(e.subscribers))
	for _, s := range e.subscribers {
		if s.active {
			out = append(out, s.sub)
		}
	}
	return out
}
