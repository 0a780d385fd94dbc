package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/rtef/pkg/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSubscriber is a minimal Subscriber that records every frame it
// receives, used to assert on routing behavior without a full active object.
type recordingSubscriber struct {
	mu      sync.Mutex
	signals []uint32
	block   chan struct{} // when non-nil, Post blocks until this is closed
}

func (r *recordingSubscriber) Post(ctx context.Context, f frame.Frame) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, f.Signal)
	return nil
}

func (r *recordingSubscriber) recorded() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint32, len(r.signals))
	copy(out, r.signals)
	return out
}

func newTestBroker(t *testing.T) (*Broker, context.Context) {
	t.Helper()
	ctx := context.Background()
	b := New(ctx)
	t.Cleanup(b.Stop)
	return b, ctx
}

// TestExactRouting is scenario S1.
func TestExactRouting(t *testing.T) {
	b, ctx := newTestBroker(t)
	sub := &recordingSubscriber{}

	n := b.Subscribe([]TopicConfig{{Kind: Exact, Topic: 0x40000001}}, sub)
	require.Equal(t, 1, n)

	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x40000001}, Primary))
	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x40000002}, Primary))

	assert.Eventually(t, func() bool {
		return len(sub.recorded()) == 1
	}, 200*time.Millisecond, 5*time.Millisecond)

	assert.Equal(t, []uint32{0x40000001}, sub.recorded())
}

// TestMaskRouting is scenario S2.
func TestMaskRouting(t *testing.T) {
	b, ctx := newTestBroker(t)
	sub := &recordingSubscriber{}

	n := b.Subscribe([]TopicConfig{{Kind: Mask, Topic: 0x41000000, Mask: 0xFF000000}}, sub)
	require.Equal(t, 1, n)

	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x41AABBCC}, Primary))
	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x42AABBCC}, Primary))

	assert.Eventually(t, func() bool {
		return len(sub.recorded()) == 1
	}, 200*time.Millisecond, 5*time.Millisecond)

	assert.Equal(t, []uint32{0x41AABBCC}, sub.recorded())
}

func TestSubscribeProcessesEveryConfig(t *testing.T) {
	b, _ := newTestBroker(t)
	sub := &recordingSubscriber{}

	n := b.Subscribe([]TopicConfig{
		{Kind: Exact, Topic: 0x1},
		{Kind: Exact, Topic: 0x2},
		{Kind: Exact, Topic: 0x3},
	}, sub)

	assert.Equal(t, 3, n)
}

func TestSubscribeIsIdempotent(t *testing.T) {
	b, _ := newTestBroker(t)
	sub := &recordingSubscriber{}

	cfg := []TopicConfig{{Kind: Exact, Topic: 0x1}}
	b.Subscribe(cfg, sub)
	b.Subscribe(cfg, sub)
	b.Subscribe(cfg, sub)

	b.mu.Lock()
	entry, ok := findOrCreate(b.topics[:], cfg[0])
	b.mu.Unlock()
	require.True(t, ok)
	assert.Len(t, entry.activeSubscribers(), 1)
}

func TestUnsubscribeReturnsRemovalCount(t *testing.T) {
	b, ctx := newTestBroker(t)
	sub := &recordingSubscriber{}

	cfg := []TopicConfig{{Kind: Exact, Topic: 0x1}}
	require.Equal(t, 1, b.Subscribe(cfg, sub))
	require.Equal(t, 1, b.Unsubscribe(cfg, sub))

	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x1}, Primary))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sub.recorded())
}

func TestFullTopicTableRejectsSubscribe(t *testing.T) {
	b, _ := newTestBroker(t)
	sub := &recordingSubscriber{}

	for i := 0; i < MaxTopics; i++ {
		n := b.Subscribe([]TopicConfig{{Kind: Exact, Topic: uint32(i + 1)}}, sub)
		require.Equal(t, 1, n)
	}

	n := b.Subscribe([]TopicConfig{{Kind: Exact, Topic: 0xFFFF}}, sub)
	assert.Equal(t, 0, n, "a 33rd topic must fail to allocate")

	b.Unsubscribe([]TopicConfig{{Kind: Exact, Topic: 1}}, sub)
	// Freeing a slot does not reclaim the entry itself (unsubscribe only
	// deactivates the subscriber), so the table stays full; this mirrors
	// the original's topic entries never being released once allocated.
}

// TestFullSubscriberListReclaimsFreedSlotForNewSubscriber is the S8
// boundary case: filling a topic's subscriber list, removing one
// subscriber, then subscribing a different one must succeed by reusing
// the freed slot rather than being rejected outright.
func TestFullSubscriberListReclaimsFreedSlotForNewSubscriber(t *testing.T) {
	b, _ := newTestBroker(t)
	cfg := []TopicConfig{{Kind: Exact, Topic: 0x1}}

	subs := make([]*recordingSubscriber, MaxSubscribersPerTopic)
	for i := range subs {
		subs[i] = &recordingSubscriber{}
		require.Equal(t, 1, b.Subscribe(cfg, subs[i]))
	}

	newSub := &recordingSubscriber{}
	require.Equal(t, 0, b.Subscribe(cfg, newSub), "topic's subscriber list is full")

	require.Equal(t, 1, b.Unsubscribe(cfg, subs[0]))
	assert.Equal(t, 1, b.Subscribe(cfg, newSub), "a different subscriber must reclaim the freed slot")
}

// TestPriorityIsolation is scenario S4: stalling the PRIMARY pump on a
// blocking subscriber must not prevent SECONDARY posts from being
// dispatched.
func TestPriorityIsolation(t *testing.T) {
	b, ctx := newTestBroker(t)

	blockedSub := &recordingSubscriber{block: make(chan struct{})}
	b.Subscribe([]TopicConfig{{Kind: Exact, Topic: 0x1}}, blockedSub)

	freeSub := &recordingSubscriber{}
	b.Subscribe([]TopicConfig{{Kind: Exact, Topic: 0x2}}, freeSub)

	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x1}, Primary))
	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x2}, Secondary))

	assert.Eventually(t, func() bool {
		return len(freeSub.recorded()) == 1
	}, 500*time.Millisecond, 5*time.Millisecond, "secondary delivery must not be blocked by a stalled primary subscriber")

	close(blockedSub.block)
}

func TestNoMatchLeavesSubscriberUnrecorded(t *testing.T) {
	b, ctx := newTestBroker(t)
	sub := &recordingSubscriber{}
	b.Subscribe([]TopicConfig{{Kind: Exact, Topic: 0x5}}, sub)

	require.NoError(t, b.Post(ctx, frame.Frame{Signal: 0x6}, Primary))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sub.recorded())
}
