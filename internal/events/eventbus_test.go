package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/onsetgo/correntropy/internal/transient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingConsumer struct {
	mu     sync.Mutex
	events []TransientEvent
}

func (r *recordingConsumer) Name() string { return "recording" }

func (r *recordingConsumer) Process(_ context.Context, event TransientEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingConsumer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPublishDeliversToConsumer(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("testing.(*T).Run"),
		goleak.IgnoreTopFunction("runtime.gopark"),
	)

	bus := New(Config{BufferSize: 8, Workers: 1})
	consumer := &recordingConsumer{}
	bus.Subscribe(consumer)
	bus.Start(context.Background())
	defer bus.Stop()

	ok := bus.Publish(TransientEvent{SessionID: "s1", Kind: transient.Onset, Index: 10, Time: time.Now()})
	require.True(t, ok)

	require.Eventually(t, func() bool { return consumer.count() == 1 }, time.Second, time.Millisecond)
	snap := bus.StatsSnapshot()
	assert.Equal(t, int64(1), snap.Published)
}

func TestPublishBeforeStartIsDropped(t *testing.T) {
	bus := New(DefaultConfig())
	ok := bus.Publish(TransientEvent{SessionID: "s1"})
	assert.False(t, ok)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := New(Config{BufferSize: 1, Workers: 0})
	bus.cfg.Workers = 1
	block := make(chan struct{})
	bus.Subscribe(blockingConsumer{block})
	bus.Start(context.Background())
	defer func() {
		close(block)
		bus.Stop()
	}()

	// first event occupies the single worker (blocked on block channel)
	require.True(t, bus.Publish(TransientEvent{SessionID: "s1"}))
	time.Sleep(10 * time.Millisecond)
	// second fills the buffer, third should be dropped
	bus.Publish(TransientEvent{SessionID: "s2"})
	dropped := false
	for i := 0; i < 10 && !dropped; i++ {
		if !bus.Publish(TransientEvent{SessionID: "s3"}) {
			dropped = true
		}
	}
	assert.True(t, dropped)
}

type blockingConsumer struct{ block chan struct{} }

func (blockingConsumer) Name() string { return "blocking" }
func (b blockingConsumer) Process(ctx context.Context, _ TransientEvent) error {
	select {
	case <-b.block:
	case <-ctx.Done():
	}
	return nil
}
