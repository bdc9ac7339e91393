package audiosource

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerFirstChunkThenNormalChunks(t *testing.T) {
	s := NewScheduler(100, 40)

	length, isLast := s.Next(1000)
	assert.Equal(t, 100, length)
	assert.False(t, isLast)

	length, isLast = s.Next(900)
	assert.Equal(t, 40, length)
	assert.False(t, isLast)
}

func TestSchedulerFinalChunkWhenRemainingFits(t *testing.T) {
	s := NewScheduler(100, 40)
	s.Next(1000)

	length, isLast := s.Next(25)
	assert.Equal(t, 25, length)
	assert.True(t, isLast)
}

// writeMonoWAV16 builds a minimal canonical 16-bit PCM mono WAV file by
// hand, rather than depending on an encoder API, so the fixture's bytes
// are fully under the test's control.
func writeMonoWAV16(t *testing.T, path string, rate int, samples []int16) {
	t.Helper()
	var data bytes.Buffer
	for _, s := range samples {
		_ = binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	byteRate := rate * 2
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2)) // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestFileSourceDecodesWAVAndRespectsSchedule(t *testing.T) {
	samples := make([]int16, 500)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	path := filepath.Join(t.TempDir(), "fixture.wav")
	writeMonoWAV16(t, path, 16000, samples)

	src, err := Open(path, 200, 100)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 16000, src.Samplerate())

	var total int
	ctx := context.Background()
	for {
		chunk, final, err := src.Next(ctx)
		require.NoError(t, err)
		total += len(chunk)
		if final {
			break
		}
	}
	assert.Equal(t, len(samples), total)
}

func TestOpenRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o600))

	_, err := Open(path, 200, 100)
	assert.Error(t, err)
}
