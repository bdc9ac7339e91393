package gammatone

import (
	"github.com/onsetgo/correntropy/internal/logging"
	"github.com/onsetgo/correntropy/internal/triplebuffer"
)

// Bank owns N independent gammatone channel filters with center
// frequencies spaced logarithmically (by ERB number) between minFreq and
// maxFreq.
type Bank struct {
	filters    []*Filter
	input      []float64
	inputLen   int
	isFinal    bool
	bufferLen  int
	overlapLen int
}

// Config describes the parameters needed to build a Bank; BufferLength and
// OverlapLength come from the triple-buffer sizing the caller computed.
type Config struct {
	NumChannels   int
	MinFreq       float64
	MaxFreq       float64
	Samplerate    int
	BufferLength  int
	OverlapLength int
}

// NewBank constructs a filter bank from cfg.
func NewBank(cfg Config) *Bank {
	freqs := centerFrequencies(cfg.NumChannels, cfg.MinFreq, cfg.MaxFreq)
	filters := make([]*Filter, len(freqs))
	for i, f := range freqs {
		filters[i] = NewFilter(f, cfg.Samplerate)
	}
	logging.ForService("gammatone").Debug("filter bank built",
		"channels", len(freqs), "minFreq", cfg.MinFreq, "maxFreq", cfg.MaxFreq)

	return &Bank{
		filters:    filters,
		bufferLen:  cfg.BufferLength,
		overlapLen: cfg.OverlapLength,
	}
}

// NumChannels returns the number of channels owned by the bank.
func (b *Bank) NumChannels() int { return len(b.filters) }

// FirstChunkLength is the length of the first chunk the stream schedule
// expects: exactly one full buffer.
func (b *Bank) FirstChunkLength() int { return b.bufferLen }

// NormalChunkLength is bufferLength - overlap, the steady-state chunk size.
func (b *Bank) NormalChunkLength() int { return b.bufferLen - b.overlapLen }

// SetInputChunk stores a reference to the chunk about to be filtered.
func (b *Bank) SetInputChunk(input []float64, isFinal bool) {
	b.input = input
	b.inputLen = len(input)
	b.isFinal = isFinal
}

// ProcessInput advances channel c's gammatone state over the current chunk
// and returns the filtered output, meant to be written into that channel's
// leading triple-buffer slot by the caller.
func (b *Bank) ProcessInput(channel int) ([]float64, error) {
	return b.filters[channel].Process(b.input)
}

// CenterFreq exposes channel c's center frequency, mostly for diagnostics.
func (b *Bank) CenterFreq(channel int) float64 { return b.filters[channel].CenterFreq() }

// PropagateFinalOverlap copies the overlap region from the previous central
// buffer into the new leading buffer without re-filtering, used on the
// final chunk when the input is at least a normal chunk's length: the tail
// of the stream has already been filtered once as part of the prior
// central buffer and does not need a second filter pass.
func (b *Bank) PropagateFinalOverlap(channel int, tb *triplebuffer.TripleBuffer) error {
	central, err := tb.Central()
	if err != nil {
		return err
	}
	leading, err := tb.Leading()
	if err != nil {
		return err
	}
	overlap := b.overlapLen
	copy(leading.Data[:overlap], central.Data[tb.BufferLength()-overlap:])
	return nil
}
