package correntropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributionNonNegative(t *testing.T) {
	x := make([]float64, 64)
	for i := range x {
		x[i] = float64(i%5) - 2
	}
	v, err := Contribution(x, 5, 10, 1.5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 0.0)
}

func TestContributionConstantSignalIsMaximal(t *testing.T) {
	x := make([]float64, 64)
	for i := range x {
		x[i] = 3.0
	}
	v, err := Contribution(x, 0, 10, 1.0)
	require.NoError(t, err)
	// a constant window has zero lagged differences, so every exp() term
	// is 1: V = (1/(sigma*sqrt(2pi))) * W^2
	expected := (1.0 / (1.0 * 2.5066282746310002)) * 100
	assert.InDelta(t, expected, v, 1e-6)
}

func TestContributionRejectsOutOfBoundsWindow(t *testing.T) {
	x := make([]float64, 10)
	_, err := Contribution(x, 0, 10, 1.0)
	assert.Error(t, err)
}

func TestContributionRejectsNonPositiveSigma(t *testing.T) {
	x := make([]float64, 64)
	_, err := Contribution(x, 0, 10, 0)
	assert.Error(t, err)
}

func TestPSMAccumulateAcrossChannelsThenReset(t *testing.T) {
	psm := NewPSM(4)
	for ch := 0; ch < 3; ch++ {
		for m := 0; m < psm.Len(); m++ {
			psm.Add(m, float64(ch+1))
		}
	}
	for m := 0; m < psm.Len(); m++ {
		assert.Equal(t, 6.0, psm.At(m)) // 1+2+3
	}
	psm.Reset()
	for m := 0; m < psm.Len(); m++ {
		assert.Equal(t, 0.0, psm.At(m))
	}
}
