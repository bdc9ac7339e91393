// Package triplebuffer implements the sliding window of filtered
// per-channel signal the streaming core advances one chunk at a time.
package triplebuffer

import "github.com/onsetgo/correntropy/internal/errors"

// State tags how many of the up-to-three buffer slots are active.
type State int

const (
	Empty State = iota
	One
	Two
	Three
)

// Buffer is one fixed-length slot of filtered samples for one channel.
type Buffer struct {
	Data           []float64
	TerminalIndex  int // valid only on the leading buffer; -1 means unset
	hasTerminal    bool
}

func newBuffer(length int) *Buffer {
	return &Buffer{Data: make([]float64, length), TerminalIndex: -1}
}

// TripleBuffer holds up to three equal-length buffers for a single channel:
// trailing, central, and leading. Buffers cycle as new chunks arrive.
type TripleBuffer struct {
	length  int
	buffers []*Buffer // ordered oldest-to-newest, len in [0,3]
}

// New creates an empty triple buffer with the given per-buffer length.
func New(length int) *TripleBuffer {
	return &TripleBuffer{length: length}
}

// BufferLength returns the fixed per-buffer sample length.
func (t *TripleBuffer) BufferLength() int { return t.length }

// NumBuffers returns how many of the three slots are currently active.
func (t *TripleBuffer) NumBuffers() State { return State(len(t.buffers)) }

// AddLeadingBuffer grows the active count by one, allocating a new
// (uninitialized) leading buffer. Only valid when fewer than 3 are active.
func (t *TripleBuffer) AddLeadingBuffer() (*Buffer, error) {
	if len(t.buffers) >= 3 {
		return nil, invariantErr("addLeadingBuffer called with 3 buffers already active")
	}
	buf := newBuffer(t.length)
	t.buffers = append(t.buffers, buf)
	return buf, nil
}

// Cycle drops the trailing buffer, shifts central to trailing and leading
// to central, and allocates a fresh (uninitialized) leading buffer. Requires
// exactly 3 active buffers.
func (t *TripleBuffer) Cycle() (*Buffer, error) {
	if len(t.buffers) != 3 {
		return nil, invariantErr("cycle called without 3 active buffers")
	}
	t.buffers[0] = t.buffers[1]
	t.buffers[1] = t.buffers[2]
	buf := newBuffer(t.length)
	t.buffers[2] = buf
	return buf, nil
}

// SetTerminalIndex records that the leading buffer is valid only through
// index k (0 <= k <= bufferLength).
func (t *TripleBuffer) SetTerminalIndex(k int) error {
	if len(t.buffers) == 0 {
		return invariantErr("setTerminalIndex called with no active buffers")
	}
	if k < 0 || k > t.length {
		return invariantErr("terminal index out of range")
	}
	leading := t.buffers[len(t.buffers)-1]
	leading.TerminalIndex = k
	leading.hasTerminal = true
	return nil
}

// RemoveTrailingBuffer drops the oldest buffer, used at termination when the
// final correntropy window no longer needs it.
func (t *TripleBuffer) RemoveTrailingBuffer() error {
	if len(t.buffers) == 0 {
		return invariantErr("removeTrailingBuffer called with no active buffers")
	}
	t.buffers = t.buffers[1:]
	return nil
}

// GetBuffer returns buffer i (0 = trailing-most of the currently active
// set), where i must be in [0, NumBuffers).
func (t *TripleBuffer) GetBuffer(i int) (*Buffer, error) {
	if i < 0 || i >= len(t.buffers) {
		return nil, invariantErr("buffer index out of range")
	}
	return t.buffers[i], nil
}

// CentralIndex returns the index (within the active set) of the central
// buffer: (numBuffers-1)/2, i.e. 0 with two buffers, 1 with three.
func (t *TripleBuffer) CentralIndex() (int, error) {
	n := len(t.buffers)
	if n < 2 {
		return 0, invariantErr("central buffer requested with fewer than 2 active buffers")
	}
	return (n - 1) / 2, nil
}

// Central returns the central buffer directly.
func (t *TripleBuffer) Central() (*Buffer, error) {
	idx, err := t.CentralIndex()
	if err != nil {
		return nil, err
	}
	return t.GetBuffer(idx)
}

// Leading returns the most recently added buffer.
func (t *TripleBuffer) Leading() (*Buffer, error) {
	if len(t.buffers) == 0 {
		return nil, invariantErr("leading requested with no active buffers")
	}
	return t.buffers[len(t.buffers)-1], nil
}

// Trailing returns the oldest active buffer.
func (t *TripleBuffer) Trailing() (*Buffer, error) {
	if len(t.buffers) == 0 {
		return nil, invariantErr("trailing requested with no active buffers")
	}
	return t.buffers[0], nil
}

func invariantErr(msg string) error {
	return errors.New(errors.NewStd(msg)).
		Component("triplebuffer").
		Category(errors.CategoryBuffer).
		Build()
}
