package detfunc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tinyConfig keeps corrWinSize/hopsize/sigWinSize small so tests can build
// whole streams in memory without the multi-second buffers a real config
// would need.
func tinyConfig() Config {
	return Config{
		NumChannels:  2,
		MinFreq:      500,
		MaxFreq:      4000,
		Samplerate:   16000,
		CorrWinSize:  4,
		Hopsize:      2,
		SigWinSize:   10,
		GrowthChunks: 1,
	}
}

func sineChunk(n int, freq float64, samplerate int, phase0 *float64) []float64 {
	out := make([]float64, n)
	phase := *phase0
	step := 2 * math.Pi * freq / float64(samplerate)
	for i := range out {
		out[i] = math.Sin(phase)
		phase += step
	}
	*phase0 = phase
	return out
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := tinyConfig()
	cfg.Hopsize = 0
	_, err := New(cfg)
	require.Error(t, err)
	var ce *CoreError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindConfigInvalid, ce.Kind)
}

func TestFirstChunkWrongLengthRejected(t *testing.T) {
	core, err := New(tinyConfig())
	require.NoError(t, err)

	err = core.ProcessChunk(make([]float64, 3), false)
	require.Error(t, err)
	var ce *CoreError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindWrongChunkLength, ce.Kind)
}

func TestStreamAlreadyTerminatedAfterSingleChunk(t *testing.T) {
	core, err := New(tinyConfig())
	require.NoError(t, err)

	n := core.cfg.bufferLength()
	phase := 0.0
	chunk := sineChunk(n, 440, 16000, &phase)
	require.NoError(t, core.ProcessChunk(chunk, true))
	assert.True(t, core.Terminated())
	assert.Equal(t, SingleChunk, core.State())

	err = core.ProcessChunk([]float64{1}, true)
	require.Error(t, err)
	var ce *CoreError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindStreamAlreadyTerminated, ce.Kind)
}

func TestSingleChunkTooShortRejected(t *testing.T) {
	core, err := New(tinyConfig())
	require.NoError(t, err)

	err = core.ProcessChunk(make([]float64, 2), true)
	require.Error(t, err)
	var ce *CoreError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindStreamTooShort, ce.Kind)
}

func TestMultiChunkStreamProducesExactDetectionFunctionLength(t *testing.T) {
	cfg := tinyConfig()
	core, err := New(cfg)
	require.NoError(t, err)

	phase := 0.0
	first := sineChunk(cfg.bufferLength(), 300, cfg.Samplerate, &phase)
	require.NoError(t, core.ProcessChunk(first, false))
	assert.Equal(t, FirstChunk, core.State())

	for i := 0; i < 3; i++ {
		chunk := sineChunk(cfg.normalChunkLength(), 300, cfg.Samplerate, &phase)
		require.NoError(t, core.ProcessChunk(chunk, false))
		assert.Equal(t, NormalChunk, core.State())
	}

	last := sineChunk(cfg.normalChunkLength()/2, 300, cfg.Samplerate, &phase)
	require.NoError(t, core.ProcessChunk(last, true))
	assert.True(t, core.Terminated())
	assert.Equal(t, LastChunk, core.State())

	// ceil((streamLength - corrWinSize) / hopsize): 76 for 41+3*33+16 samples.
	streamLength := len(first) + 3*cfg.normalChunkLength() + len(last)
	want := (streamLength - cfg.CorrWinSize + cfg.Hopsize - 1) / cfg.Hopsize
	detFunc, err := core.GetDetectionFunction()
	require.NoError(t, err)
	assert.Equal(t, want, len(detFunc))
}

func TestGetDetectionFunctionRejectsBeforeTermination(t *testing.T) {
	core, err := New(tinyConfig())
	require.NoError(t, err)

	_, err = core.GetDetectionFunction()
	require.Error(t, err)
	var ce *CoreError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindInternalInvariant, ce.Kind)
}

func TestGetDetectionFunctionTransfersOwnership(t *testing.T) {
	cfg := tinyConfig()
	core, err := New(cfg)
	require.NoError(t, err)

	phase := 0.0
	n := core.cfg.bufferLength()
	require.NoError(t, core.ProcessChunk(sineChunk(n, 440, cfg.Samplerate, &phase), true))

	detFunc, err := core.GetDetectionFunction()
	require.NoError(t, err)
	assert.NotNil(t, detFunc)
	assert.Nil(t, core.DetectionFunction())

	_, err = core.GetDetectionFunction()
	require.Error(t, err)
}

func TestNormalChunkRejectsWrongLength(t *testing.T) {
	cfg := tinyConfig()
	core, err := New(cfg)
	require.NoError(t, err)

	phase := 0.0
	first := sineChunk(cfg.bufferLength(), 300, cfg.Samplerate, &phase)
	require.NoError(t, core.ProcessChunk(first, false))

	err = core.ProcessChunk(make([]float64, cfg.normalChunkLength()+1), false)
	require.Error(t, err)
	var ce *CoreError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindWrongChunkLength, ce.Kind)
}
