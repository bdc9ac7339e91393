// Package correntropy computes per-channel correntropy contributions and
// accumulates them into the pooled summary matrix (PSM) the detection
// function is differenced from.
package correntropy

import (
	"math"

	"github.com/onsetgo/correntropy/internal/errors"
)

// PSM holds the per-hop accumulators summed across all filter-bank
// channels for one chunk's worth of hops.
type PSM struct {
	values []float64
}

// NewPSM allocates a PSM with length hops, all zeroed.
func NewPSM(hops int) *PSM {
	return &PSM{values: make([]float64, hops)}
}

// Len returns the number of hop accumulators.
func (p *PSM) Len() int { return len(p.values) }

// At returns the accumulator for hop m.
func (p *PSM) At(m int) float64 { return p.values[m] }

// Add adds v to hop m's accumulator; called once per channel per hop.
func (p *PSM) Add(m int, v float64) { p.values[m] += v }

// Reset zeros every accumulator, the required step after a chunk's
// detection-function update consumes the PSM.
func (p *PSM) Reset() {
	for i := range p.values {
		p.values[i] = 0
	}
}

// Contribution computes V_c(t): the Gaussian-kernel correntropy of the
// filtered signal x at hop position t, over lags 1..corrWinSize, using
// bandwidth sigma. window is the correntropy window length W (corrWinSize);
// x must have at least 2*window+1 samples available starting at t.
//
// V_c(t) = (1/(sigma*sqrt(2*pi))) * sum_{i=0}^{W-1} sum_{j=1}^{W}
//
//	exp(-(x[t+i] - x[t+i+j])^2 / (2*sigma^2))
func Contribution(x []float64, t, window int, sigma float64) (float64, error) {
	if sigma <= 0 {
		return 0, invariantErr("correntropy requires sigma > 0")
	}
	// The correntropy window reads x[t .. t+2*window], so the caller must
	// guarantee that many trailing samples exist past the hop position —
	// the bound the original implementation's buffer-length math assumed
	// but never checked.
	if t < 0 || t+2*window >= len(x) {
		return 0, invariantErr("correntropy window exceeds available samples")
	}

	norm := 1.0 / (sigma * math.Sqrt(2*math.Pi))
	twoSigmaSq := 2 * sigma * sigma

	var sum float64
	for i := 0; i < window; i++ {
		for j := 1; j <= window; j++ {
			diff := x[t+i] - x[t+i+j]
			sum += math.Exp(-(diff * diff) / twoSigmaSq)
		}
	}
	return norm * sum, nil
}

func invariantErr(msg string) error {
	return errors.New(errors.NewStd(msg)).
		Component("correntropy").
		Category(errors.CategoryPSM).
		Build()
}
