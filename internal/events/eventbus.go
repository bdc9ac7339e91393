// Package events provides the asynchronous, non-blocking fan-out of
// detected transients to whichever consumers (notify, datastore)
// registered for them.
package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/onsetgo/correntropy/internal/logging"
	"github.com/onsetgo/correntropy/internal/transient"
)

// TransientEvent is one onset or offset emitted by internal/engine as it
// drives a session's internal/detfunc.Core and internal/transient.Detect.
type TransientEvent struct {
	SessionID string
	Kind      transient.Kind
	Index     int
	Fitness   float64
	Time      time.Time
}

// Consumer receives every TransientEvent published to the bus it is
// registered with. Process must not block for long; the bus calls it
// from a worker goroutine, not the publisher's.
type Consumer interface {
	Name() string
	Process(ctx context.Context, event TransientEvent) error
}

// Config tunes an EventBus.
type Config struct {
	BufferSize int
	Workers    int
}

// DefaultConfig returns sensible defaults for a single-process deployment.
func DefaultConfig() Config {
	return Config{BufferSize: 1000, Workers: 4}
}

// Stats reports running counters, safe to read concurrently.
type Stats struct {
	Published int64
	Processed int64
	Dropped   int64
	Failed    int64
}

// EventBus is a buffered, multi-worker publish/subscribe channel for
// TransientEvent. Publish never blocks once the bus is running: a full
// buffer drops the event and increments Stats.Dropped rather than
// stalling the caller driving detfunc.Core.
type EventBus struct {
	cfg       Config
	eventChan chan TransientEvent
	consumers []Consumer
	mu        sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	running atomic.Bool

	stats  Stats
	logger *slog.Logger
}

// New creates a bus in the stopped state; call Start to begin delivery.
func New(cfg Config) *EventBus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &EventBus{
		cfg:    cfg,
		logger: logging.ForService("events"),
	}
}

// Subscribe registers a consumer. It may be called before or after Start;
// a consumer only receives events delivered after it was registered.
func (b *EventBus) Subscribe(c Consumer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consumers = append(b.consumers, c)
}

// Start launches the worker pool. Safe to call once.
func (b *EventBus) Start(ctx context.Context) {
	if !b.running.CompareAndSwap(false, true) {
		return
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.eventChan = make(chan TransientEvent, b.cfg.BufferSize)

	for i := 0; i < b.cfg.Workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	b.logger.Debug("event bus started", "workers", b.cfg.Workers, "bufferSize", b.cfg.BufferSize)
}

// Stop cancels the workers, closes the queue and blocks until they exit.
// Events still queued when Stop is called may not be delivered.
func (b *EventBus) Stop() {
	if !b.running.CompareAndSwap(true, false) {
		return
	}
	b.cancel()
	close(b.eventChan)
	b.wg.Wait()
}

// Publish enqueues event for delivery. Returns false (and bumps
// Stats.Dropped) if the buffer is full, so a slow consumer never backs
// up the chunk-processing loop that calls Publish.
func (b *EventBus) Publish(event TransientEvent) bool {
	if !b.running.Load() {
		return false
	}
	select {
	case b.eventChan <- event:
		atomic.AddInt64(&b.stats.Published, 1)
		return true
	default:
		atomic.AddInt64(&b.stats.Dropped, 1)
		b.logger.Warn("event dropped, buffer full", "session", event.SessionID)
		return false
	}
}

func (b *EventBus) worker() {
	defer b.wg.Done()
	for {
		select {
		case event, ok := <-b.eventChan:
			if !ok {
				return
			}
			b.deliver(event)
		case <-b.ctx.Done():
			return
		}
	}
}

func (b *EventBus) deliver(event TransientEvent) {
	b.mu.RLock()
	consumers := make([]Consumer, len(b.consumers))
	copy(consumers, b.consumers)
	b.mu.RUnlock()

	for _, c := range consumers {
		if err := c.Process(b.ctx, event); err != nil {
			atomic.AddInt64(&b.stats.Failed, 1)
			b.logger.Error("consumer failed", "consumer", c.Name(), "error", err)
			continue
		}
		atomic.AddInt64(&b.stats.Processed, 1)
	}
}

// StatsSnapshot returns a snapshot of the running counters.
func (b *EventBus) StatsSnapshot() Stats {
	return Stats{
		Published: atomic.LoadInt64(&b.stats.Published),
		Processed: atomic.LoadInt64(&b.stats.Processed),
		Dropped:   atomic.LoadInt64(&b.stats.Dropped),
		Failed:    atomic.LoadInt64(&b.stats.Failed),
	}
}
