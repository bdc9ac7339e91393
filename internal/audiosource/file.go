package audiosource

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/smallnest/ringbuffer"
	"github.com/tphakala/flac"
)

// sampleWidth is the byte width used to stage float64 samples through the
// byte-oriented ring buffer: the IEEE-754 bit pattern, 8 bytes per sample.
const sampleWidth = 8

// decodedReader is the minimum a decoded WAV or FLAC stream needs to
// expose so FileSource can chunk it identically regardless of codec.
type decodedReader interface {
	samplerate() int
	// readInto decodes up to len(dst) mono float64 samples, returning how
	// many were produced. io.EOF once the stream is exhausted.
	readInto(dst []float64) (int, error)
}

// FileSource reads a WAV or FLAC file, downmixes to mono float64, and
// stages it through a ring buffer so reads aren't coupled to the file's
// own decode block size, then hands chunks out per a Scheduler.
type FileSource struct {
	file   *os.File
	reader decodedReader
	ring   *ringbuffer.RingBuffer
	sched  *Scheduler
	eof    bool
}

// stagingSamples is how many decoded samples are pulled from the codec
// reader per ring-buffer refill.
const stagingSamples = 4096

// Open opens path, sniffing its extension to pick a WAV or FLAC decoder.
// firstChunkLen/normalChunkLen are detfunc's chunk schedule (bufferLength,
// then bufferLength-overlap), used to size the staging ring and to drive
// the internal Scheduler.
func Open(path string, firstChunkLen, normalChunkLen int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr("open source file", err)
	}

	var reader decodedReader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		reader, err = newWAVReader(f)
	case ".flac":
		reader, err = newFLACReader(f)
	default:
		f.Close()
		return nil, wrapErr("unsupported audio file extension", errors.NewStd(path))
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	ringCapacity := (firstChunkLen + 4*normalChunkLen + stagingSamples) * sampleWidth
	return &FileSource{
		file:   f,
		reader: reader,
		ring:   ringbuffer.New(ringCapacity),
		sched:  NewScheduler(firstChunkLen, normalChunkLen),
	}, nil
}

func (s *FileSource) Samplerate() int { return s.reader.samplerate() }

// Next fills the ring buffer until either the Scheduler's requested
// length is available or the decoder is exhausted, then slices off the
// next chunk, marking it final once both the decoder and ring are drained.
func (s *FileSource) Next(ctx context.Context) ([]float64, bool, error) {
	staging := make([]float64, stagingSamples)
	sampleBuf := make([]byte, sampleWidth)

	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		available := s.ring.Length() / sampleWidth
		want := s.sched.peek()
		// Keep reading ahead while available == want: that's ambiguous
		// between "the stream ends exactly here" and "more is still
		// coming and just hasn't been staged yet". Only available > want
		// or a confirmed decoder EOF resolves which chunk this is.
		if s.eof || available > want {
			break
		}

		n, err := s.reader.readInto(staging)
		for _, v := range staging[:n] {
			binary.LittleEndian.PutUint64(sampleBuf, math.Float64bits(v))
			if _, werr := s.ring.Write(sampleBuf); werr != nil {
				return nil, false, wrapErr("stage decoded samples", werr)
			}
		}
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return nil, false, wrapErr("decode audio file", err)
		}
	}

	available := s.ring.Length() / sampleWidth
	length, isLast := s.sched.Next(available)

	chunk := make([]float64, length)
	buf := make([]byte, length*sampleWidth)
	if length > 0 {
		if _, err := io.ReadFull(s.ring, buf); err != nil {
			return nil, false, wrapErr("drain staged samples", err)
		}
		for i := 0; i < length; i++ {
			bits := binary.LittleEndian.Uint64(buf[i*sampleWidth : (i+1)*sampleWidth])
			chunk[i] = math.Float64frombits(bits)
		}
	}

	final := isLast && s.eof && s.ring.Length() == 0
	return chunk, final, nil
}

func (s *FileSource) Close() error { return s.file.Close() }

// wavReader adapts github.com/go-audio/wav to decodedReader.
type wavReader struct {
	dec     *wav.Decoder
	divisor float32
	rate    int
}

func newWAVReader(f *os.File) (*wavReader, error) {
	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, wrapErr("not a valid wav file", errors.NewStd(f.Name()))
	}

	var divisor float32
	switch dec.BitDepth {
	case 16:
		divisor = 32768.0
	case 24:
		divisor = 8388608.0
	case 32:
		divisor = 2147483648.0
	default:
		return nil, wrapErr("unsupported wav bit depth", errors.NewStd(f.Name()))
	}

	return &wavReader{dec: dec, divisor: divisor, rate: int(dec.SampleRate)}, nil
}

func (r *wavReader) samplerate() int { return r.rate }

func (r *wavReader) readInto(dst []float64) (int, error) {
	numChans := int(r.dec.NumChans)
	if numChans < 1 {
		numChans = 1
	}
	buf := &audio.IntBuffer{
		Data:   make([]int, len(dst)*numChans),
		Format: &audio.Format{SampleRate: r.rate, NumChannels: numChans},
	}
	n, err := r.dec.PCMBuffer(buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}

	frames := n / numChans
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < numChans; ch++ {
			sum += float64(buf.Data[i*numChans+ch]) / float64(r.divisor)
		}
		dst[i] = sum / float64(numChans)
	}
	return frames, nil
}

// flacReader adapts github.com/tphakala/flac: each ParseNext call yields
// one frame's worth of subframes, downmixed and queued for readInto to
// drain one sample at a time.
type flacReader struct {
	stream  *flac.Stream
	rate    int
	divisor float64
	pending []float64
}

func newFLACReader(f *os.File) (*flacReader, error) {
	stream, err := flac.Parse(f)
	if err != nil {
		return nil, wrapErr("not a valid flac file", err)
	}
	divisor := float64(int64(1) << (stream.Info.BitsPerSample - 1))
	return &flacReader{stream: stream, rate: int(stream.Info.SampleRate), divisor: divisor}, nil
}

func (r *flacReader) samplerate() int { return r.rate }

func (r *flacReader) readInto(dst []float64) (int, error) {
	for len(r.pending) < len(dst) {
		frame, err := r.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		numChans := len(frame.Subframes)
		if numChans == 0 {
			continue
		}
		blockSize := len(frame.Subframes[0].Samples)
		for i := 0; i < blockSize; i++ {
			var sum float64
			for ch := 0; ch < numChans; ch++ {
				sum += float64(frame.Subframes[ch].Samples[i]) / r.divisor
			}
			r.pending = append(r.pending, sum/float64(numChans))
		}
	}

	if len(r.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(dst, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func wrapErr(msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component("audiosource").
		Category(errors.CategoryAudioSource).
		Context("cause", cause.Error()).
		Build()
}
