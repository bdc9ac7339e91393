package conf

import (
	"github.com/onsetgo/correntropy/internal/errors"
)

// Validate checks the invariants the core's create(cfg) contract depends on
// (spec §6): non-positive sizes, maxFreq below minFreq, an out-of-range
// samplerate, or a negative thread count must all fail here, before a
// DetFuncCore is ever built. Settings carries no strategy strings, so
// none are checked here.
func Validate(s *Settings) error {
	switch {
	case s.FilterBank.NumChannels <= 0:
		return configError("filterbank.numChannels must be > 0")
	case s.FilterBank.MinFreq <= 0:
		return configError("filterbank.minFreq must be > 0")
	case s.FilterBank.MaxFreq < s.FilterBank.MinFreq:
		return configError("filterbank.maxFreq must be >= minFreq")
	case !validSamplerate(s.FilterBank.Samplerate):
		return configError("filterbank.samplerate must be one of 8000, 11025, 16000, 32000, 48000")
	case s.DetFunc.CorrWinSize <= 0:
		return configError("detfunc.corrWinSize must be > 0")
	case s.DetFunc.Hopsize <= 0:
		return configError("detfunc.hopsize must be > 0")
	case s.DetFunc.SigWinSize <= 0:
		return configError("detfunc.sigWinSize must be > 0")
	case s.DetFunc.ScaleFactor <= 0:
		return configError("detfunc.scaleFactor must be > 0")
	case s.DetFunc.DedicatedThreads < 0:
		return configError("detfunc.dedicatedThreads must be >= 0")
	case s.Transient.MinKernel <= 0 || s.Transient.MaxKernel < s.Transient.MinKernel:
		return configError("transient.minKernel/maxKernel out of range")
	}
	return nil
}

func validSamplerate(rate int) bool {
	switch rate {
	case 8000, 11025, 16000, 32000, 48000:
		return true
	default:
		return false
	}
}

func configError(msg string) error {
	return errors.New(errors.NewStd(msg)).
		Component("configuration").
		Category(errors.CategoryConfiguration).
		Build()
}
