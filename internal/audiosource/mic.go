package audiosource

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/logging"
)

// MicConfig selects the capture device and samplerate.
type MicConfig struct {
	// DeviceName matches against malgo.EnumerateDevices by substring; empty
	// picks the platform default capture device.
	DeviceName string
	Samplerate int
}

// MicSource captures live mono audio via gen2brain/malgo, buffering the
// callback-driven samples into a channel Next drains, mirroring the
// teacher's device-selection/backend-by-GOOS approach in a single file.
type MicSource struct {
	cfg    MicConfig
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	sched  *Scheduler

	samples chan float64
	closed  chan struct{}
	once    sync.Once
}

// NewMic initializes capture from the configured device and starts
// streaming into an internal buffered channel.
func NewMic(cfg MicConfig, firstChunkLen, normalChunkLen int) (*MicSource, error) {
	backend, err := backendForGOOS()
	if err != nil {
		return nil, err
	}

	malgoCtx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, wrapErr("init malgo context", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(cfg.Samplerate)

	s := &MicSource{
		cfg:     cfg,
		ctx:     malgoCtx,
		sched:   NewScheduler(firstChunkLen, normalChunkLen),
		samples: make(chan float64, normalChunkLen*4),
		closed:  make(chan struct{}),
	}

	callbacks := malgo.DeviceCallbacks{Data: s.onData}
	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = malgoCtx.Uninit()
		return nil, wrapErr("init capture device", err)
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = malgoCtx.Uninit()
		return nil, wrapErr("start capture device", err)
	}

	return s, nil
}

func backendForGOOS() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, wrapErr("unsupported capture platform", errors.NewStd(runtime.GOOS))
	}
}

// onData is malgo's capture callback: outputSamples is unused (capture
// only), inputSamples holds interleaved little-endian float32 frames.
func (s *MicSource) onData(_, inputSamples []byte, frameCount uint32) {
	for i := uint32(0); i < frameCount; i++ {
		off := i * 4
		if int(off+4) > len(inputSamples) {
			break
		}
		bits := uint32(inputSamples[off]) | uint32(inputSamples[off+1])<<8 |
			uint32(inputSamples[off+2])<<16 | uint32(inputSamples[off+3])<<24
		v := float64(math.Float32frombits(bits))
		select {
		case s.samples <- v:
		default:
			logging.ForService("audiosource-mic").Warn("capture buffer full, dropping sample")
		}
	}
}

func (s *MicSource) Samplerate() int { return s.cfg.Samplerate }

// Next blocks collecting samples until the Scheduler's requested chunk
// length is filled or ctx is canceled. A MicSource stream never marks a
// chunk final on its own; callers stop it explicitly via Close.
func (s *MicSource) Next(ctx context.Context) ([]float64, bool, error) {
	want := s.sched.peek()
	chunk := make([]float64, 0, want)
	for len(chunk) < want {
		select {
		case v := <-s.samples:
			chunk = append(chunk, v)
		case <-s.closed:
			s.sched.Next(len(chunk))
			return chunk, true, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	s.sched.Next(want)
	return chunk, false, nil
}

// Close stops capture and unblocks any in-flight Next call.
func (s *MicSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		if stopErr := s.device.Stop(); stopErr != nil {
			err = wrapErr("stop capture device", stopErr)
		}
		s.device.Uninit()
		err2 := s.ctx.Uninit()
		if err == nil && err2 != nil {
			err = wrapErr("uninit malgo context", err2)
		}
	})
	return err
}
