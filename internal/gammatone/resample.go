package gammatone

import (
	"math"

	"github.com/onsetgo/correntropy/internal/errors"
)

// halfBandTaps is a fixed-length windowed-sinc half-band lowpass, used both
// to band-limit the signal before 2x zero-stuffing (upsample) and to
// band-limit it before 2x decimation (downsample). Symmetric FIR, so no
// phase correction is needed beyond the constant group delay both
// upsampleX2 and downsampleX2 already account for.
var halfBandTaps = makeHalfBandTaps(31)

func makeHalfBandTaps(n int) []float64 {
	taps := make([]float64, n)
	center := float64(n-1) / 2
	sum := 0.0
	for i := 0; i < n; i++ {
		x := float64(i) - center
		var sinc float64
		if x == 0 {
			sinc = 1
		} else {
			sinc = math.Sin(math.Pi*x/2) / (math.Pi * x / 2)
		}
		// Hamming window to tame the sinc's slow decay.
		window := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		taps[i] = sinc * window
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

func fir(x []float64, taps []float64) []float64 {
	half := len(taps) / 2
	out := make([]float64, len(x))
	for n := range x {
		var acc float64
		for k, t := range taps {
			idx := n + k - half
			if idx >= 0 && idx < len(x) {
				acc += t * x[idx]
			}
		}
		out[n] = acc
	}
	return out
}

// upsampleX2 zero-stuffs data to twice its length and band-limits the
// result, the anti-alias step spec.md requires before the biquad cascade
// runs at double rate.
func upsampleX2(data []float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.NewStd("resample: empty input")).
			Category(errors.CategoryResample).Build()
	}
	stuffed := make([]float64, 2*len(data))
	for i, v := range data {
		stuffed[2*i] = 2 * v
	}
	return fir(stuffed, halfBandTaps), nil
}

// downsampleX2 band-limits then decimates by 2, undoing upsampleX2. An
// odd input length is zero-padded by one sample before decimating, mirroring
// the off-by-one tail handling in the original resampler.
func downsampleX2(data []float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.NewStd("resample: empty input")).
			Category(errors.CategoryResample).Build()
	}
	padded := data
	if len(data)%2 != 0 {
		padded = make([]float64, len(data)+1)
		copy(padded, data)
	}
	filtered := fir(padded, halfBandTaps)
	out := make([]float64, len(padded)/2)
	for i := range out {
		out[i] = filtered[2*i]
	}
	return out, nil
}
