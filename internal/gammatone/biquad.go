package gammatone

import "math"

// Stage is one second-order IIR section in Direct-Form-II-Transposed form,
// the same structure the corpus's equalizer biquads use: two state
// variables (d1, d2) carried across calls instead of raw input/output
// history, so chunked streaming and a single big buffer produce identical
// output.
type Stage struct {
	b0, b1, b2 float64
	a0, a1, a2 float64
	d1, d2     float64
}

// Process runs one sample through the stage, updating its state in place.
func (s *Stage) Process(x float64) float64 {
	y := (s.b0*x + s.d1) / s.a0
	s.d1 = s.b1*x - s.a1*y + s.d2
	s.d2 = s.b2*x - s.a2*y
	return y
}

// ProcessBatch filters data in place, sample by sample, carrying state
// across the call the way a streaming chunk boundary requires.
func (s *Stage) ProcessBatch(data []float64) {
	for i, x := range data {
		data[i] = s.Process(x)
	}
}

// allPoleStages builds the 4 biquad stages of the Slaney-1993 all-pole
// gammatone approximation for a channel centered at centerFreq.
func allPoleStages(centerFreq float64, samplerate int) [4]Stage {
	deltaT := 1 / float64(samplerate)
	b := 2 * math.Pi * 1.019 * ERB(centerFreq)

	var stages [4]Stage
	for i := 0; i < 4; i++ {
		st := Stage{
			b0: deltaT,
			b2: 0,
			a0: 1,
			a1: -2 * math.Cos(2*math.Pi*centerFreq*deltaT) / math.Exp(b*deltaT),
			a2: math.Exp(-2 * b * deltaT),
		}
		st.b1 = stageB1(i, centerFreq, deltaT, b)
		numericalNormalize(&st, centerFreq, samplerate)
		stages[i] = st
	}
	return stages
}

// stageB1 computes b1 for cascade stage i; the sign of the second term
// alternates with i and stages 0-1 use sqrt(3+2^1.5) while stages 2-3 use
// sqrt(3-2^1.5), matching the four-stage split in the Slaney derivation.
func stageB1(i int, centerFreq, deltaT, b float64) float64 {
	sign := 1.0
	if i%2 == 1 {
		sign = -1.0
	}
	var root float64
	if i < 2 {
		root = math.Sqrt(3 + math.Pow(2, 1.5))
	} else {
		root = math.Sqrt(3 - math.Pow(2, 1.5))
	}

	cosTerm := 2 * deltaT * math.Cos(2*centerFreq*math.Pi*deltaT) / math.Exp(b*deltaT)
	sinTerm := sign * 2 * root * deltaT * math.Sin(2*centerFreq*math.Pi*deltaT) / math.Exp(b*deltaT)
	return -(cosTerm + sinTerm) / 2
}

// numericalNormalize scales a stage's feedforward coefficients so the
// cascade has unit magnitude at centerFreq, evaluating the stage's
// transfer function at z = exp(i*2*pi*centerFreq/samplerate).
func numericalNormalize(st *Stage, centerFreq float64, samplerate int) {
	x1 := 2 * math.Pi * centerFreq / float64(samplerate)
	x2 := 4 * math.Pi * centerFreq / float64(samplerate)

	numRe := st.b2 + st.b1*math.Cos(x1) + st.b0*math.Cos(x2)
	numIm := st.b1*math.Sin(x1) + st.b0*math.Sin(x2)
	denRe := st.a2 + st.a1*math.Cos(x1) + st.a0*math.Cos(x2)
	denIm := st.a1*math.Sin(x1) + st.a0*math.Sin(x2)

	gain := math.Sqrt((numRe*numRe + numIm*numIm) / (denRe*denRe + denIm*denIm))

	st.b0 /= gain
	st.b1 /= gain
	st.b2 /= gain
}
