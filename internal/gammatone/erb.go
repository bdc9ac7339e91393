// Package gammatone implements a 4-stage all-pole gammatone filter cascade
// (Slaney 1993) with band-limited 2x oversampling around the cascade.
package gammatone

import "math"

// ERB returns the Equivalent Rectangular Bandwidth of a filter centered
// at f, in Hz: 24.7*(0.00437*f + 1).
func ERB(f float64) float64 {
	return 24.7 * (0.00437*f + 1)
}

// centerFrequencies returns n center frequencies spaced evenly on the ERB
// scale between minFreq and maxFreq. With n == 1 it returns minFreq,
// matching the FilterBank contract that minFreq == maxFreq in that case.
func centerFrequencies(n int, minFreq, maxFreq float64) []float64 {
	if n == 1 {
		return []float64{minFreq}
	}

	erbMin, erbMax := erbNumber(minFreq), erbNumber(maxFreq)
	freqs := make([]float64, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		erb := erbMin + frac*(erbMax-erbMin)
		freqs[i] = erbNumberToFreq(erb)
	}
	return freqs
}

// erbNumber converts a frequency to its position on the ERB-rate scale
// (Glasberg & Moore 1990), used here only to derive an evenly-spaced
// center-frequency layout for the filter bank.
func erbNumber(f float64) float64 {
	return 21.4 * math.Log10(4.37*f/1000+1)
}

func erbNumberToFreq(erb float64) float64 {
	return (math.Pow(10, erb/21.4) - 1) * 1000 / 4.37
}
