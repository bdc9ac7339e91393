// Package audiosource implements the AudioSource external collaborator
// spec.md §6 leaves abstract: something that hands internal/engine a
// sequence of mono float64 chunks sized to detfunc's chunk schedule.
package audiosource

import (
	"context"
)

// Source yields a stream of chunks sized by a Scheduler, terminating
// with one isFinal=true call.
type Source interface {
	// Samplerate reports the source's native sample rate, in Hz.
	Samplerate() int
	// Next blocks until a chunk is available, returns io.EOF-style
	// termination via the final bool rather than an error.
	Next(ctx context.Context) (chunk []float64, final bool, err error)
	// Close releases any underlying file handle or capture device.
	Close() error
}

// Scheduler slices a flat sample stream into the exact chunk-length
// sequence detfunc.Core.ProcessChunk expects: one firstChunkLength chunk,
// then normalChunkLength chunks. The final chunk is whatever remains, up
// to the length requested at that point; a stream that divides evenly
// ends on a full-length final chunk rather than an empty one.
type Scheduler struct {
	firstLen  int
	normalLen int
	started   bool
}

// NewScheduler builds a Scheduler from the buffer/overlap geometry a
// detfunc.Config exposes (bufferLength for the first chunk, bufferLength
// minus overlap for every chunk after).
func NewScheduler(firstLen, normalLen int) *Scheduler {
	return &Scheduler{firstLen: firstLen, normalLen: normalLen}
}

// peek reports the length Next would currently request, without
// consuming the first-chunk/normal-chunk transition.
func (s *Scheduler) peek() int {
	if !s.started {
		return s.firstLen
	}
	return s.normalLen
}

// Next returns the length the next chunk read from the source should be,
// given remaining samples still unread. isLast is true when this is the
// final chunk detfunc.Core.ProcessChunk should see (remaining <= this
// chunk's length).
func (s *Scheduler) Next(remaining int) (length int, isLast bool) {
	want := s.normalLen
	if !s.started {
		want = s.firstLen
		s.started = true
	}
	if remaining <= want {
		return remaining, true
	}
	return want, false
}
