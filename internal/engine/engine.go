// Package engine drives one streaming session end to end: pull chunks
// from an audiosource.Source, feed them to a detfunc.Core, run
// transient.Detect over the finished detection function, and publish
// every event through an events.EventBus. Adapted from the teacher's
// audiocore ProcessingPipeline/HealthMonitor/MetricsCollector machinery,
// rewired around this domain's chunk-scheduler → detection-function →
// transient pipeline instead of AudioSource → ChunkBuffer → Analyzer.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/onsetgo/correntropy/internal/audiosource"
	"github.com/onsetgo/correntropy/internal/detfunc"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/logging"
	"github.com/onsetgo/correntropy/internal/transient"
	"github.com/prometheus/client_golang/prometheus"
)

// Config gathers what one session needs: the detection-function core's
// tunables and the transient detector's kernel-search tunables.
type Config struct {
	DetFunc   detfunc.Config
	Transient transient.Config
}

// Session runs one audiosource.Source through to a finished transient
// list, publishing each one through bus as soon as the stream terminates
// and the kernel search resolves it (spec.md's core never emits events
// itself — this is the layer that turns its final array into them).
type Session struct {
	ID     string
	cfg    Config
	source audiosource.Source
	bus    *events.EventBus
	logger interface {
		Debug(string, ...any)
		Warn(string, ...any)
		Error(string, ...any)
	}

	chunksProcessed int
	chunksDropped   int
}

// New allocates a Session with a fresh UUID, bound to source and
// publishing onto bus.
func New(cfg Config, source audiosource.Source, bus *events.EventBus) *Session {
	return &Session{
		ID:     uuid.NewString(),
		cfg:    cfg,
		source: source,
		bus:    bus,
		logger: logging.ForService("engine"),
	}
}

// Run drives source to completion, building the Core, detecting
// transients, and publishing each one. It returns the detected events
// for callers that want them directly in addition to the published
// copies.
func (s *Session) Run(ctx context.Context) ([]transient.Event, error) {
	cfg := s.cfg.DetFunc
	if cfg.Samplerate == 0 {
		cfg.Samplerate = s.source.Samplerate()
	}

	core, err := detfunc.New(cfg)
	if err != nil {
		return nil, wrapErr("build detfunc core", err)
	}

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, final, err := s.source.Next(ctx)
		if err != nil {
			return nil, wrapErr("read audio chunk", err)
		}

		if err := core.ProcessChunk(chunk, final); err != nil {
			return nil, wrapErr("process chunk", err)
		}
		s.chunksProcessed++
		chunksProcessedTotal.Inc()

		if final {
			break
		}
	}

	detFunc, err := core.GetDetectionFunction()
	if err != nil {
		return nil, wrapErr("retrieve detection function", err)
	}
	sessionDuration.Observe(time.Since(start).Seconds())

	events_, err := transient.Detect(detFunc, s.cfg.Transient)
	if err != nil {
		return nil, wrapErr("detect transients", err)
	}
	transientsDetectedTotal.Add(float64(len(events_)))

	for _, e := range events_ {
		s.publish(e)
	}

	s.logger.Debug("session complete", "session", s.ID, "chunks", s.chunksProcessed, "transients", len(events_))
	return events_, nil
}

func (s *Session) publish(e transient.Event) {
	if s.bus == nil {
		return
	}
	ok := s.bus.Publish(events.TransientEvent{
		SessionID: s.ID,
		Kind:      e.Kind,
		Index:     e.Index,
		Fitness:   e.Fitness,
		Time:      time.Now(),
	})
	if !ok {
		s.chunksDropped++
		s.logger.Warn("event bus dropped transient", "session", s.ID, "kind", e.Kind)
	}
}

// ChunksProcessed reports how many chunks this session has fed to its
// Core so far.
func (s *Session) ChunksProcessed() int { return s.chunksProcessed }

var (
	chunksProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "onsetgo",
		Subsystem: "engine",
		Name:      "chunks_processed_total",
		Help:      "Number of audio chunks fed into a detfunc.Core.",
	})
	transientsDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "onsetgo",
		Subsystem: "engine",
		Name:      "transients_detected_total",
		Help:      "Number of onset/offset events detected across all sessions.",
	})
	sessionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "onsetgo",
		Subsystem: "engine",
		Name:      "session_duration_seconds",
		Help:      "Wall-clock time spent streaming one session through its Core.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Registry exposes the engine's Prometheus collectors for internal/
// httpserver's /metrics endpoint to register once at startup.
func Registry() []prometheus.Collector {
	return []prometheus.Collector{chunksProcessedTotal, transientsDetectedTotal, sessionDuration}
}

func wrapErr(msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component("engine").
		Category(errors.CategoryAudio).
		Context("cause", cause.Error()).
		Build()
}
