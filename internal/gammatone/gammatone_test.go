package gammatone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestERB(t *testing.T) {
	// 24.7*(0.00437*1000+1) = 24.7*5.37 = 132.639
	assert.InDelta(t, 132.639, ERB(1000), 1e-2)
}

func TestCenterFrequenciesSingleChannel(t *testing.T) {
	freqs := centerFrequencies(1, 220, 220)
	require.Len(t, freqs, 1)
	assert.Equal(t, 220.0, freqs[0])
}

func TestCenterFrequenciesMonotonic(t *testing.T) {
	freqs := centerFrequencies(8, 80, 4000)
	require.Len(t, freqs, 8)
	assert.InDelta(t, 80, freqs[0], 1e-6)
	assert.InDelta(t, 4000, freqs[len(freqs)-1], 1e-6)
	for i := 1; i < len(freqs); i++ {
		assert.Greater(t, freqs[i], freqs[i-1])
	}
}

// TestNumericalNormalizeUnitGain checks testable property 6: a pure
// sinusoid at f0 passed through the 4-stage cascade should retain unit
// magnitude after normalization. The gain is measured as an RMS ratio over
// the settled second half of the signal and checked to within 5e-2.
func TestNumericalNormalizeUnitGain(t *testing.T) {
	const samplerate = 11025
	const f0 = 440.0

	stages := allPoleStages(f0, samplerate)

	n := 4096
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * f0 * float64(i) / samplerate)
	}
	y := append([]float64(nil), x...)
	for i := range stages {
		stages[i].ProcessBatch(y)
	}

	// Compare RMS amplitude over the settled tail, well past the filter's
	// transient response.
	rms := func(v []float64) float64 {
		var sum float64
		for _, s := range v {
			sum += s * s
		}
		return math.Sqrt(sum / float64(len(v)))
	}
	tail := n / 2
	gain := rms(y[tail:]) / rms(x[tail:])
	assert.InDelta(t, 1.0, gain, 5e-2)
}

func TestFilterImpulseResponsePeak(t *testing.T) {
	const samplerate = 11025
	const f0 = 220.0
	f := NewFilter(f0, samplerate)

	n := 1024
	impulse := make([]float64, n)
	impulse[0] = 1.0

	out, err := f.Process(impulse)
	require.NoError(t, err)
	require.Len(t, out, n)

	peakIdx := 0
	peakVal := math.Abs(out[0])
	for i, v := range out {
		if math.Abs(v) > peakVal {
			peakVal = math.Abs(v)
			peakIdx = i
		}
	}
	assert.Greater(t, peakIdx, 0)
}

func TestBankFirstAndNormalChunkLengths(t *testing.T) {
	bank := NewBank(Config{
		NumChannels:   4,
		MinFreq:       80,
		MaxFreq:       4000,
		Samplerate:    11025,
		BufferLength:  100,
		OverlapLength: 20,
	})
	assert.Equal(t, 100, bank.FirstChunkLength())
	assert.Equal(t, 80, bank.NormalChunkLength())
	assert.Equal(t, 4, bank.NumChannels())
}
