package collab

import "math"

// PitchEstimator picks the dominant fundamental frequency out of a block
// of spectral magnitude data. detfunc never calls this: it is the typed
// contract an external Viterbi/candidate-list selector is built against.
type PitchEstimator interface {
	// EstimatePitch returns the loudest fundamental, in Hz, found in one
	// dftBlocksize-wide block of magnitudes starting at data[offset].
	EstimatePitch(data []float32, offset, dftBlocksize, harmonics, fftSize, samplerate int) float32
}

// HPSEstimator implements PitchEstimator with the harmonic product
// spectrum: the magnitude spectrum is downsampled by 2..harmonics and
// multiplied in place, so a true fundamental's harmonics reinforce its
// bin while noise does not.
type HPSEstimator struct{}

var _ PitchEstimator = HPSEstimator{}

func (HPSEstimator) EstimatePitch(data []float32, offset, dftBlocksize, harmonics, fftSize, samplerate int) float32 {
	freqs := HarmonicProductSpectrum(data[offset:offset+dftBlocksize], dftBlocksize, harmonics, fftSize, samplerate)
	if len(freqs) == 0 {
		return 0
	}
	return freqs[0]
}

// HarmonicProductSpectrum computes the loudest HPS-weighted bin per
// dftBlocksize-wide block of data and converts it to Hz, one entry per
// block. Ported from original_source/src/HPSDetection.c's
// HarmonicProductSpectrum, fixing its running-maximum seed: the source
// seeds with FLT_MIN (the smallest positive normal float), which loses
// to any non-positive spectrum value and can leave loudestIndex at its
// initial -1. This seeds with negative infinity instead, so the first
// sample in a block always replaces it.
func HarmonicProductSpectrum(data []float32, dftBlocksize, harmonics, fftSize, samplerate int) []float32 {
	if dftBlocksize <= 0 || len(data)%dftBlocksize != 0 {
		return nil
	}
	numBlocks := len(data) / dftBlocksize
	result := make([]float32, numBlocks)
	block := make([]float32, dftBlocksize)

	for b := 0; b < numBlocks; b++ {
		start := b * dftBlocksize
		copy(block, data[start:start+dftBlocksize])

		for h := 2; h <= harmonics; h++ {
			limit := dftBlocksize / h
			for j := 0; j <= limit && j*h < dftBlocksize; j++ {
				data[start+j] *= block[j*h]
			}
		}

		loudest := float32(math.Inf(-1))
		loudestIndex := -1
		for i := 0; i < dftBlocksize; i++ {
			if data[start+i] > loudest {
				loudest = data[start+i]
				loudestIndex = i
			}
		}
		result[b] = BinToFreq(loudestIndex, fftSize, samplerate)
	}
	return result
}

// BinToFreq converts an FFT bin index to Hz for the given transform size
// and sample rate.
func BinToFreq(bin, fftSize, samplerate int) float32 {
	return float32(bin) * float32(samplerate) / float32(fftSize)
}
