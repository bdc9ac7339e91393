package collab

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateListAddGetAdjustCost(t *testing.T) {
	list := NewCandidateList(4)
	list.Add(440.0, 3)
	list.Add(220.0, 1)
	require.Equal(t, 2, list.Len())

	c, err := list.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 440.0, c.Frequency)
	assert.Equal(t, 3, c.Confidence)
	assert.Equal(t, -1, c.BacklinkIndex)

	require.NoError(t, list.AdjustCost(1, 56.4, 0))
	c, err = list.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 56.4, c.Cost)
	assert.Equal(t, 0, c.BacklinkIndex)

	_, err = list.Get(9)
	assert.Error(t, err)
}

func TestCandidateListResizeDownKeepsContents(t *testing.T) {
	list := NewCandidateList(18)
	list.Add(190.0, 7)
	list.Add(96.0, 2)
	list.ResizeDown()
	assert.Equal(t, 2, list.Len())
	c, err := list.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 96.0, c.Frequency)
}

func TestHarmonicProductSpectrumPicksLoudestBin(t *testing.T) {
	// A single block with an obvious peak at bin 4; harmonics=1 so the
	// HPS multiply loop never runs and the peak passes through as-is.
	data := []float32{0.1, 0.1, 0.1, 0.1, 5.0, 0.1, 0.1, 0.1}
	freqs := HarmonicProductSpectrum(data, len(data), 1, 16, 8000)
	require.Len(t, freqs, 1)
	assert.Equal(t, BinToFreq(4, 16, 8000), freqs[0])
}

func TestHarmonicProductSpectrumHandlesNonPositiveSpectrum(t *testing.T) {
	// Every bin non-positive: the FLT_MIN-seeded source implementation
	// would leave loudestIndex at its initial -1 here since no bin beats
	// a tiny positive seed. The -Inf seed must pick the largest bin,
	// bin 3 (-0.1), instead.
	data := []float32{-1.0, -0.5, -2.0, -0.1}
	freqs := HarmonicProductSpectrum(data, len(data), 1, 4, 8000)
	require.Len(t, freqs, 1)
	assert.Equal(t, BinToFreq(3, 4, 8000), freqs[0])
}

func TestHTTPSilenceGateParsesMask(t *testing.T) {
	gate := NewHTTPSilenceGate("http://vad.example/mask", 0)
	httpmock.ActivateNonDefault(gate.Client)
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("POST", gate.Endpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"mask": [true, false, true]}`))

	mask, err := gate.Mask(context.Background(), make([]float64, 480), 16000, Frame10ms)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)
}

func TestHTTPSilenceGateRejectsErrorStatus(t *testing.T) {
	gate := NewHTTPSilenceGate("http://vad.example/mask", 0)
	httpmock.ActivateNonDefault(gate.Client)
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("POST", gate.Endpoint,
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := gate.Mask(context.Background(), make([]float64, 480), 16000, Frame10ms)
	assert.Error(t, err)
}
