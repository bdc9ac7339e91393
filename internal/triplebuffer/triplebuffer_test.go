package triplebuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLeadingBufferGrowsUpToThree(t *testing.T) {
	tb := New(4)
	assert.Equal(t, Empty, tb.NumBuffers())

	_, err := tb.AddLeadingBuffer()
	require.NoError(t, err)
	assert.Equal(t, One, tb.NumBuffers())

	_, err = tb.AddLeadingBuffer()
	require.NoError(t, err)
	assert.Equal(t, Two, tb.NumBuffers())

	_, err = tb.AddLeadingBuffer()
	require.NoError(t, err)
	assert.Equal(t, Three, tb.NumBuffers())

	_, err = tb.AddLeadingBuffer()
	assert.Error(t, err)
}

func TestCycleRequiresThreeActiveBuffers(t *testing.T) {
	tb := New(4)
	_, err := tb.Cycle()
	assert.Error(t, err)

	for i := 0; i < 3; i++ {
		_, err := tb.AddLeadingBuffer()
		require.NoError(t, err)
	}
	_, err = tb.Cycle()
	assert.NoError(t, err)
}

func TestCycleShiftsTrailingCentralLeading(t *testing.T) {
	tb := New(2)
	first, _ := tb.AddLeadingBuffer()
	first.Data[0] = 1
	second, _ := tb.AddLeadingBuffer()
	second.Data[0] = 2
	third, _ := tb.AddLeadingBuffer()
	third.Data[0] = 3

	fourth, err := tb.Cycle()
	require.NoError(t, err)
	fourth.Data[0] = 4

	trailing, _ := tb.Trailing()
	central, _ := tb.Central()
	leading, _ := tb.Leading()

	assert.Equal(t, second, trailing)
	assert.Equal(t, third, central)
	assert.Equal(t, fourth, leading)
}

func TestCentralIndexRequiresAtLeastTwoBuffers(t *testing.T) {
	tb := New(4)
	_, err := tb.Central()
	assert.Error(t, err)

	tb.AddLeadingBuffer()
	_, err = tb.Central()
	assert.Error(t, err)

	tb.AddLeadingBuffer()
	central, err := tb.Central()
	require.NoError(t, err)
	idx, err := tb.CentralIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	got, _ := tb.GetBuffer(idx)
	assert.Equal(t, central, got)
}

func TestSetTerminalIndexValidatesRange(t *testing.T) {
	tb := New(4)
	err := tb.SetTerminalIndex(1)
	assert.Error(t, err, "no active buffers yet")

	tb.AddLeadingBuffer()
	assert.Error(t, tb.SetTerminalIndex(-1))
	assert.Error(t, tb.SetTerminalIndex(5))
	require.NoError(t, tb.SetTerminalIndex(2))

	leading, err := tb.Leading()
	require.NoError(t, err)
	assert.Equal(t, 2, leading.TerminalIndex)
}

func TestRemoveTrailingBufferShrinksActiveSet(t *testing.T) {
	tb := New(4)
	for i := 0; i < 3; i++ {
		_, err := tb.AddLeadingBuffer()
		require.NoError(t, err)
	}
	require.NoError(t, tb.RemoveTrailingBuffer())
	assert.Equal(t, Two, tb.NumBuffers())

	require.NoError(t, tb.RemoveTrailingBuffer())
	assert.Equal(t, One, tb.NumBuffers())

	require.NoError(t, tb.RemoveTrailingBuffer())
	assert.Equal(t, Empty, tb.NumBuffers())

	assert.Error(t, tb.RemoveTrailingBuffer())
}

func TestBufferLengthReportsFixedSize(t *testing.T) {
	tb := New(17)
	assert.Equal(t, 17, tb.BufferLength())
	buf, _ := tb.AddLeadingBuffer()
	assert.Len(t, buf.Data, 17)
}
