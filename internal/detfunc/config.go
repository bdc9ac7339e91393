package detfunc

// FilterStrategy names which filter-bank implementation builds the
// channel filters a Core drives. "gammatone" (the cascade in
// internal/gammatone) is the only one implemented; the type exists so
// config validation has a real enum to check, the way spec's cfg.
// filterStrategy field expects, rather than silently accepting any string.
type FilterStrategy string

const (
	FilterStrategyGammatone FilterStrategy = "gammatone"
)

// CorrStrategy names which correntropy contribution implementation a
// Core uses. "gaussian" (internal/correntropy's Gaussian-kernel
// Contribution) is the only one implemented.
type CorrStrategy string

const (
	CorrStrategyGaussian CorrStrategy = "gaussian"
)

// Config gathers the tunables a Core needs, mirroring conf.Settings'
// FilterBank and DetFunc groups so callers can build one directly off
// loaded configuration without a conversion layer living in internal/conf.
type Config struct {
	NumChannels int
	MinFreq     float64
	MaxFreq     float64
	Samplerate  int

	CorrWinSize int // correntropy window half-width, in samples
	Hopsize     int // samples between successive PSM hops
	SigWinSize  int // rolling sigma window length, in samples

	// ScaleFactor is the Silverman-rule bandwidth scale applied on top of
	// the rolling window's sample standard deviation. Zero defaults to
	// sigopt.SilvermanScale in New, but an explicit negative value is
	// still a configuration error.
	ScaleFactor float64

	// FilterStrategy and CorrStrategy select which filter-bank and
	// correntropy implementation back this Core. Empty defaults to the
	// gammatone/gaussian pair in New; any other unrecognized value is
	// rejected by validate.
	FilterStrategy FilterStrategy
	CorrStrategy   CorrStrategy

	// DedicatedThreads is the number of worker goroutines a caller should
	// reserve for this Core's channel processing (0 lets the caller pick,
	// e.g. from cpuspec.RecommendedThreads).
	DedicatedThreads int

	// GrowthChunks controls how many additional normal chunks' worth of
	// hops the detection-function array grows by whenever it fills up,
	// amortizing reallocation the way append() growth does for a slice.
	GrowthChunks int
}

func (c Config) validate() error {
	switch {
	case c.NumChannels <= 0:
		return newCoreError(KindConfigInvalid, "numChannels must be positive", nil)
	case c.MinFreq <= 0 || c.MaxFreq < c.MinFreq:
		return newCoreError(KindConfigInvalid, "maxFreq must be >= minFreq > 0", nil)
	case c.Samplerate <= 0:
		return newCoreError(KindConfigInvalid, "samplerate must be positive", nil)
	case c.CorrWinSize <= 0:
		return newCoreError(KindConfigInvalid, "corrWinSize must be positive", nil)
	case c.Hopsize <= 0:
		return newCoreError(KindConfigInvalid, "hopsize must be positive", nil)
	case c.SigWinSize < c.Hopsize:
		return newCoreError(KindConfigInvalid, "sigWinSize must be at least hopsize", nil)
	case c.ScaleFactor < 0:
		return newCoreError(KindConfigInvalid, "scaleFactor must be non-negative", nil)
	case c.FilterStrategy != "" && c.FilterStrategy != FilterStrategyGammatone:
		return newCoreError(KindConfigInvalid, "unsupported filterStrategy", map[string]any{"filterStrategy": c.FilterStrategy})
	case c.CorrStrategy != "" && c.CorrStrategy != CorrStrategyGaussian:
		return newCoreError(KindConfigInvalid, "unsupported corrStrategy", map[string]any{"corrStrategy": c.CorrStrategy})
	case c.DedicatedThreads < 0:
		return newCoreError(KindConfigInvalid, "dedicatedThreads must be non-negative", nil)
	case c.GrowthChunks < 0:
		return newCoreError(KindConfigInvalid, "growthChunks must be non-negative", nil)
	}
	return nil
}

// pSMLength is the number of hops covered by one rolling sigma window,
// and so the number of PSM accumulators advanced per chunk.
func (c Config) pSMLength() int { return c.SigWinSize / c.Hopsize }

// overlap is the context, in samples, a chunk boundary must retain so a
// hop near the start of a new central buffer can still read its full
// correntropy window without reaching into the already-discarded trailing
// buffer. Resolves the open question left by the window geometry: reusing
// corrWinSize (the correntropy window's own half-width) twice over is the
// smallest overlap that keeps every hop's 2*corrWinSize+1-sample window
// inside a single buffer.
func (c Config) overlap() int { return 2 * c.CorrWinSize }

// bufferLength is the fixed per-buffer sample count sized so pSMLength
// hops, each needing 2*corrWinSize trailing samples, all fit without the
// last hop's window running past the buffer.
func (c Config) bufferLength() int { return c.pSMLength()*2*c.CorrWinSize + 1 }

func (c Config) normalChunkLength() int { return c.bufferLength() - c.overlap() }

// ChunkSchedule exposes the exact first/normal chunk lengths a Source
// feeding this Config's Core must produce, so callers building an
// audiosource.Scheduler (or sizing a synthetic benchmark buffer) don't
// have to re-derive the buffer/overlap arithmetic themselves.
func (c Config) ChunkSchedule() (firstChunkLen, normalChunkLen int) {
	return c.bufferLength(), c.normalChunkLength()
}
