// Package detfunc implements the streaming detection-function state
// machine: it drives a gammatone filter bank, one triple buffer and
// rolling sigma estimator per channel, and a pooled summary matrix,
// turning a sequence of raw-audio chunks into a growing detection-function
// array ready for transient.Detector.
package detfunc

import (
	"math"

	"github.com/onsetgo/correntropy/internal/correntropy"
	"github.com/onsetgo/correntropy/internal/gammatone"
	"github.com/onsetgo/correntropy/internal/logging"
	"github.com/onsetgo/correntropy/internal/sigopt"
	"github.com/onsetgo/correntropy/internal/triplebuffer"
)

// State names the chunk-sequencing state, mirroring the NO_CHUNK /
// FIRST_CHUNK / NORMAL_CHUNK / LAST_CHUNK / SINGLE_CHUNK progression.
type State int

const (
	NoChunk State = iota
	FirstChunk
	NormalChunk
	LastChunk
	SingleChunk
)

func (s State) String() string {
	switch s {
	case FirstChunk:
		return "FIRST_CHUNK"
	case NormalChunk:
		return "NORMAL_CHUNK"
	case LastChunk:
		return "LAST_CHUNK"
	case SingleChunk:
		return "SINGLE_CHUNK"
	default:
		return "NO_CHUNK"
	}
}

// Core is one stream's worth of detection-function state, one per audio
// channel group sharing a filter bank. Not safe for concurrent calls.
type Core struct {
	cfg Config

	bank     *gammatone.Bank
	buffers  []*triplebuffer.TripleBuffer
	sigmas   []*sigopt.Estimator
	psm      *correntropy.PSM
	detFunc  []float32
	logger   interface {
		Debug(string, ...any)
	}

	lastPSMEntry float64
	streamLength int
	state        State
	terminated   bool
	retrieved    bool
}

// New allocates a Core from cfg, validating it first.
func New(cfg Config) (*Core, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	bufferLen := cfg.bufferLength()
	overlap := cfg.overlap()

	bank := gammatone.NewBank(gammatone.Config{
		NumChannels:   cfg.NumChannels,
		MinFreq:       cfg.MinFreq,
		MaxFreq:       cfg.MaxFreq,
		Samplerate:    cfg.Samplerate,
		BufferLength:  bufferLen,
		OverlapLength: overlap,
	})

	scale := cfg.ScaleFactor
	if scale == 0 {
		scale = sigopt.SilvermanScale
	}

	buffers := make([]*triplebuffer.TripleBuffer, cfg.NumChannels)
	sigmas := make([]*sigopt.Estimator, cfg.NumChannels)
	for ch := 0; ch < cfg.NumChannels; ch++ {
		buffers[ch] = triplebuffer.New(bufferLen)
		sigmas[ch] = sigopt.New(cfg.Hopsize, cfg.SigWinSize, scale)
	}

	return &Core{
		cfg:     cfg,
		bank:    bank,
		buffers: buffers,
		sigmas:  sigmas,
		psm:     correntropy.NewPSM(cfg.pSMLength()),
		state:   NoChunk,
		logger:  logging.ForService("detfunc"),
	}, nil
}

// State reports the current chunk-sequencing state.
func (c *Core) State() State { return c.state }

// DetectionFunction returns the detection-function samples produced so
// far without transferring ownership, for callers that want to inspect
// progress mid-stream. The slice is only fully sized once the stream has
// been terminated with a final chunk.
func (c *Core) DetectionFunction() []float32 { return c.detFunc }

// GetDetectionFunction is the terminal call: it requires the stream to
// already be terminated, hands the finished detection-function array to
// the caller, and clears the core's own reference so the array has
// exactly one owner from that point on.
func (c *Core) GetDetectionFunction() ([]float32, error) {
	if !c.terminated {
		return nil, newCoreError(KindInternalInvariant, "getDetectionFunction called before stream termination", nil)
	}
	if c.retrieved {
		return nil, newCoreError(KindInternalInvariant, "getDetectionFunction already transferred ownership", nil)
	}
	out := c.detFunc
	c.detFunc = nil
	c.retrieved = true
	return out, nil
}

// Terminated reports whether a final chunk has already been consumed.
func (c *Core) Terminated() bool { return c.terminated }

// ProcessChunk feeds the next chunk of raw audio samples (one sample
// stream, pre-mixed to mono) into the core. isFinal marks the last chunk
// of the stream; after it, further calls return KindStreamAlreadyTerminated.
func (c *Core) ProcessChunk(chunk []float64, isFinal bool) error {
	if c.terminated {
		return newCoreError(KindStreamAlreadyTerminated, "processChunk called after stream termination", nil)
	}

	switch c.state {
	case NoChunk:
		if isFinal {
			return c.processSingleChunk(chunk)
		}
		if len(chunk) != c.cfg.bufferLength() {
			return wrongLength(c.cfg.bufferLength(), len(chunk))
		}
		return c.processFirstChunk(chunk)

	case FirstChunk, NormalChunk:
		if isFinal {
			if len(chunk) > c.cfg.normalChunkLength() {
				return wrongLength(c.cfg.normalChunkLength(), len(chunk))
			}
			return c.processLastChunk(chunk)
		}
		if len(chunk) != c.cfg.normalChunkLength() {
			return wrongLength(c.cfg.normalChunkLength(), len(chunk))
		}
		return c.processNormalChunk(chunk)

	default:
		return newCoreError(KindStreamAlreadyTerminated, "processChunk called after stream termination", nil)
	}
}

func wrongLength(want, got int) error {
	return newCoreError(KindWrongChunkLength, "chunk length does not match the expected schedule",
		map[string]any{"want": want, "got": got})
}

func (c *Core) processFirstChunk(chunk []float64) error {
	c.bank.SetInputChunk(chunk, false)
	for ch := 0; ch < c.cfg.NumChannels; ch++ {
		out, err := c.bank.ProcessInput(ch)
		if err != nil {
			return newCoreError(KindResampleFailure, "gammatone filtering failed", map[string]any{"channel": ch, "cause": err.Error()})
		}
		buf, err := c.buffers[ch].AddLeadingBuffer()
		if err != nil {
			return newCoreError(KindInternalInvariant, "addLeadingBuffer failed on first chunk", map[string]any{"channel": ch, "cause": err.Error()})
		}
		copy(buf.Data, out)
		c.sigmas[ch].Setup(buf)
	}
	c.state = FirstChunk
	c.streamLength += len(chunk)
	c.logger.Debug("first chunk processed", "length", len(chunk))
	return nil
}

func (c *Core) processNormalChunk(chunk []float64) error {
	c.bank.SetInputChunk(chunk, false)
	overlap := c.cfg.overlap()

	leadings := make([]*triplebuffer.Buffer, c.cfg.NumChannels)
	for ch := 0; ch < c.cfg.NumChannels; ch++ {
		out, err := c.bank.ProcessInput(ch)
		if err != nil {
			return newCoreError(KindResampleFailure, "gammatone filtering failed", map[string]any{"channel": ch, "cause": err.Error()})
		}

		prevLeading, err := c.buffers[ch].Leading()
		if err != nil {
			return newCoreError(KindInternalInvariant, "no leading buffer available before cycling", map[string]any{"channel": ch, "cause": err.Error()})
		}

		var newLeading *triplebuffer.Buffer
		if c.buffers[ch].NumBuffers() == triplebuffer.Three {
			newLeading, err = c.buffers[ch].Cycle()
		} else {
			newLeading, err = c.buffers[ch].AddLeadingBuffer()
		}
		if err != nil {
			return newCoreError(KindInternalInvariant, "failed to advance triple buffer", map[string]any{"channel": ch, "cause": err.Error()})
		}

		copy(newLeading.Data[:overlap], prevLeading.Data[len(prevLeading.Data)-overlap:])
		copy(newLeading.Data[overlap:], out)
		leadings[ch] = newLeading
	}

	if err := c.accumulateHops(leadings, c.cfg.pSMLength()); err != nil {
		return err
	}

	for ch := 0; ch < c.cfg.NumChannels; ch++ {
		c.sigmas[ch].AdvanceBuffer(c.cfg.bufferLength(), overlap)
	}

	c.state = NormalChunk
	c.streamLength += len(chunk)
	return nil
}

func (c *Core) processLastChunk(chunk []float64) error {
	n := len(chunk)
	overlap := c.cfg.overlap()
	if n > 0 {
		c.bank.SetInputChunk(chunk, true)
	}

	leadings := make([]*triplebuffer.Buffer, c.cfg.NumChannels)
	for ch := 0; ch < c.cfg.NumChannels; ch++ {
		var out []float64
		if n > 0 {
			var err error
			out, err = c.bank.ProcessInput(ch)
			if err != nil {
				return newCoreError(KindResampleFailure, "gammatone filtering failed on final chunk", map[string]any{"channel": ch, "cause": err.Error()})
			}
		}

		prevLeading, err := c.buffers[ch].Leading()
		if err != nil {
			return newCoreError(KindInternalInvariant, "no leading buffer available before final cycle", map[string]any{"channel": ch, "cause": err.Error()})
		}

		var newLeading *triplebuffer.Buffer
		if c.buffers[ch].NumBuffers() == triplebuffer.Three {
			newLeading, err = c.buffers[ch].Cycle()
		} else {
			newLeading, err = c.buffers[ch].AddLeadingBuffer()
		}
		if err != nil {
			return newCoreError(KindInternalInvariant, "failed to advance triple buffer on final chunk", map[string]any{"channel": ch, "cause": err.Error()})
		}

		copy(newLeading.Data[:overlap], prevLeading.Data[len(prevLeading.Data)-overlap:])
		if n > 0 {
			copy(newLeading.Data[overlap:overlap+n], out)
		}
		if err := c.buffers[ch].SetTerminalIndex(overlap + n); err != nil {
			return newCoreError(KindInternalInvariant, "setTerminalIndex failed", map[string]any{"channel": ch, "cause": err.Error()})
		}
		leadings[ch] = newLeading
	}

	validHops := c.validHopCount(overlap + n)
	if err := c.accumulateHops(leadings, validHops); err != nil {
		return err
	}

	c.streamLength += n
	c.terminated = true
	c.state = LastChunk
	c.finalResize()
	return nil
}

func (c *Core) processSingleChunk(chunk []float64) error {
	n := len(chunk)
	minLen := 2*c.cfg.CorrWinSize + 1
	if n < minLen {
		return newCoreError(KindStreamTooShort, "stream shorter than one correntropy window",
			map[string]any{"want_at_least": minLen, "got": n})
	}

	c.bank.SetInputChunk(chunk, true)
	buffers := make([]*triplebuffer.Buffer, c.cfg.NumChannels)
	for ch := 0; ch < c.cfg.NumChannels; ch++ {
		out, err := c.bank.ProcessInput(ch)
		if err != nil {
			return newCoreError(KindResampleFailure, "gammatone filtering failed", map[string]any{"channel": ch, "cause": err.Error()})
		}
		buf, err := c.buffers[ch].AddLeadingBuffer()
		if err != nil {
			return newCoreError(KindInternalInvariant, "addLeadingBuffer failed on single chunk", map[string]any{"channel": ch, "cause": err.Error()})
		}
		copy(buf.Data[:n], out)
		if err := c.buffers[ch].SetTerminalIndex(n); err != nil {
			return newCoreError(KindInternalInvariant, "setTerminalIndex failed", map[string]any{"channel": ch, "cause": err.Error()})
		}
		c.sigmas[ch].Setup(buf)
		buffers[ch] = buf
	}

	validHops := c.validHopCount(n)
	if err := c.accumulateHops(buffers, validHops); err != nil {
		return err
	}

	c.streamLength = n
	c.terminated = true
	c.state = SingleChunk
	c.finalResize()
	return nil
}

// validHopCount returns how many of the configured pSMLength hop
// positions fit entirely within the first limit samples of a buffer.
func (c *Core) validHopCount(limit int) int {
	full := c.cfg.pSMLength()
	count := 0
	for m := 0; m < full; m++ {
		t := m * c.cfg.Hopsize
		if t+2*c.cfg.CorrWinSize >= limit {
			break
		}
		count++
	}
	return count
}

// accumulateHops runs every channel's sigma/correntropy computation for
// hops [0, numHops), sums them in the PSM, and differences each hop
// against the running lastPSMEntry to extend the detection function.
func (c *Core) accumulateHops(leadings []*triplebuffer.Buffer, numHops int) error {
	for ch := 0; ch < c.cfg.NumChannels; ch++ {
		var trailing, central *triplebuffer.Buffer
		var err error
		switch c.buffers[ch].NumBuffers() {
		case triplebuffer.Three:
			trailing, err = c.buffers[ch].Trailing()
			if err != nil {
				return newCoreError(KindInternalInvariant, "trailing buffer missing", map[string]any{"channel": ch})
			}
			central, err = c.buffers[ch].Central()
		case triplebuffer.Two:
			central, err = c.buffers[ch].Central()
		default: // One: single-chunk path, the only buffer stands in for central
			central = leadings[ch]
		}
		if err != nil {
			return newCoreError(KindInternalInvariant, "central buffer missing", map[string]any{"channel": ch, "cause": err.Error()})
		}

		leading := leadings[ch]
		if central == leading {
			leading = nil
		}

		for m := 0; m < numHops; m++ {
			sigma, err := c.sigmas[ch].AdvanceWindow(trailing, central, leading)
			if err != nil {
				return newCoreError(KindInternalInvariant, "sigma estimation failed", map[string]any{"channel": ch, "hop": m, "cause": err.Error()})
			}
			t := m * c.cfg.Hopsize
			v, err := correntropy.Contribution(central.Data, t, c.cfg.CorrWinSize, math.Max(sigma, minSigma))
			if err != nil {
				return newCoreError(KindInternalInvariant, "correntropy contribution failed", map[string]any{"channel": ch, "hop": m, "cause": err.Error()})
			}
			c.psm.Add(m, v)
		}
	}

	for m := 0; m < numHops; m++ {
		total := c.psm.At(m)
		c.appendEntry(total - c.lastPSMEntry)
		c.lastPSMEntry = total
	}
	c.psm.Reset()
	return nil
}

// minSigma floors the bandwidth estimate so a silent (constant) window
// never drives correntropy through a division by zero.
const minSigma = 1e-9

func (c *Core) ensureCapacity(extra int) {
	need := len(c.detFunc) + extra
	if cap(c.detFunc) >= need {
		return
	}
	growth := c.cfg.pSMLength() * (1 + c.cfg.GrowthChunks)
	if growth <= 0 {
		growth = 1
	}
	newCap := cap(c.detFunc)
	for newCap < need {
		newCap += growth
	}
	grown := make([]float32, len(c.detFunc), newCap)
	copy(grown, c.detFunc)
	c.detFunc = grown
}

func (c *Core) appendEntry(v float64) {
	c.ensureCapacity(1)
	c.detFunc = append(c.detFunc, float32(v))
}

// finalResize trims or pads the detection function to the exact length
// the invariant len(DetFunc) == ceil((streamLength-corrWinSize)/hopsize)
// requires, decoupling the exact final length from the per-chunk hop
// bookkeeping above.
func (c *Core) finalResize() {
	target := c.exactLength()
	if target < 0 {
		target = 0
	}
	if len(c.detFunc) == target {
		return
	}
	if len(c.detFunc) > target {
		c.detFunc = c.detFunc[:target]
		return
	}
	grown := make([]float32, target)
	copy(grown, c.detFunc)
	c.detFunc = grown
}

func (c *Core) exactLength() int {
	numerator := c.streamLength - c.cfg.CorrWinSize
	if numerator <= 0 {
		return 0
	}
	return (numerator + c.cfg.Hopsize - 1) / c.cfg.Hopsize
}
