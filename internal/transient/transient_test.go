package transient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampDetFunc(n int, rising bool) []float32 {
	out := make([]float32, n)
	for i := range out {
		z := -1 + 2*float64(i)/float64(n-1)
		v := z / (1.15 - absF(z))
		if !rising {
			v = -v
		}
		out[i] = float32(v)
	}
	return out
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestDetectRejectsInvalidConfig(t *testing.T) {
	_, err := Detect(make([]float32, 10), Config{WindowSize: 0, KernelShape: 1.15})
	require.Error(t, err)
}

func TestDetectShortStreamYieldsNoEvents(t *testing.T) {
	events, err := Detect(make([]float32, 4), Config{WindowSize: 10, KernelShape: 1.15})
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestDetectFindsOnsetOnPerfectKernelMatch(t *testing.T) {
	detFunc := rampDetFunc(40, true)
	events, err := Detect(detFunc, Config{WindowSize: 40, KernelShape: 1.15, MinFitness: -1})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, Onset, events[0].Kind)
	assert.InDelta(t, 0, events[0].Fitness, 1e-6)
}

func TestFitnessIsNegatedMSE(t *testing.T) {
	window := make([]float32, 10)
	f := fitness(window, 1.15, Onset)
	assert.Less(t, f, 0.0)
}

func TestKernelOffsetIsTimeReversedOnset(t *testing.T) {
	z := 0.4
	onset := kernel(z, 1.15, Onset)
	offset := kernel(-z, 1.15, Offset)
	assert.InDelta(t, onset, offset, 1e-12)
}
