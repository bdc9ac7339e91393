package sigopt

import (
	"testing"

	"github.com/onsetgo/correntropy/internal/triplebuffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantBuffer(n int, v float64) *triplebuffer.Buffer {
	tb := triplebuffer.New(n)
	buf, _ := tb.AddLeadingBuffer()
	for i := range buf.Data {
		buf.Data[i] = v
	}
	return buf
}

func TestSigmaNonNegative(t *testing.T) {
	est := New(5, 20, SilvermanScale)
	central := constantBuffer(100, 0)
	for i := range central.Data {
		central.Data[i] = float64(i % 7)
	}
	est.Setup(central)
	sigma, err := est.AdvanceWindow(nil, central, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sigma, 0.0)
}

func TestSigmaZeroForConstantWindow(t *testing.T) {
	est := New(5, 20, SilvermanScale)
	central := constantBuffer(100, 3.0)
	est.Setup(central)
	sigma, err := est.AdvanceWindow(nil, central, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sigma)
}

func TestSigmaAcrossTrailingCentralLeading(t *testing.T) {
	est := New(5, 10, SilvermanScale)
	trailing := constantBuffer(40, 1.0)
	central := constantBuffer(40, 1.0)
	leading := constantBuffer(40, 1.0)
	est.Setup(trailing)
	sigma, err := est.AdvanceWindow(trailing, central, leading)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sigma)
}

func TestAdvanceWindowIncrementsHop(t *testing.T) {
	est := New(5, 10, SilvermanScale)
	central := constantBuffer(100, 0)
	for i := range central.Data {
		central.Data[i] = float64(i)
	}
	est.Setup(central)
	_, err := est.AdvanceWindow(nil, central, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, est.hopIndex)
}
