// Package sigopt computes the rolling Gaussian-kernel bandwidth (sigma)
// used by internal/correntropy, one hop at a time, over a window that can
// span the trailing/central/leading triple-buffer boundary.
package sigopt

import (
	"math"

	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/triplebuffer"
)

// SilvermanScale is (4/3)^(1/5), the constant Silverman's rule of thumb
// uses to turn a sample standard deviation into a KDE bandwidth.
const SilvermanScale = 1.0592538626581

// Estimator tracks the rolling-window position for one channel.
type Estimator struct {
	hopsize     int
	winSize     int
	scaleFactor float64

	// hopIndex counts completed advanceWindow calls for this buffer epoch;
	// the window center is hopIndex*hopsize within the logical stream that
	// starts at the beginning of the current central buffer.
	hopIndex int

	// bufferOffset is how far the current central buffer's position 0 sits
	// from the very first sample ever seen, so setTerminationIndex and
	// window clipping operate in one consistent coordinate space.
	bufferOffset int

	terminationIndex int // -1 until SetTerminationIndex is called
}

// New builds an estimator for one channel.
func New(hopsize, sigWinSize int, scaleFactor float64) *Estimator {
	return &Estimator{hopsize: hopsize, winSize: sigWinSize, scaleFactor: scaleFactor, terminationIndex: -1}
}

// Setup primes the estimator with the first buffer so the first hop (at
// logical position 0) is valid. It resets the hop counter and offset.
func (e *Estimator) Setup(buffer *triplebuffer.Buffer) {
	e.hopIndex = 0
	e.bufferOffset = 0
}

// AdvanceBuffer shifts the window's notion of logical position 0 forward
// by bufferLength-overlap, called whenever the triple buffer cycles.
func (e *Estimator) AdvanceBuffer(bufferLength, overlap int) {
	e.bufferOffset += bufferLength - overlap
	e.hopIndex = 0
}

// SetTerminationIndex clamps the rightmost included sample on the final
// chunk to k, within the leading buffer.
func (e *Estimator) SetTerminationIndex(k int) {
	e.terminationIndex = k
}

// AdvanceWindow computes sigma for the next hop, given the currently active
// buffers (trailing may be nil if only two buffers are active), and
// advances the hop counter. center is the logical sample position, within
// the current central buffer, that this hop is centered on.
func (e *Estimator) AdvanceWindow(trailing, central, leading *triplebuffer.Buffer) (float64, error) {
	terminationIndex := e.terminationIndex
	bufferLength := len(central.Data)
	center := e.hopIndex * e.hopsize
	if trailing != nil {
		// accumulate's logical index 0 is the first trailing sample.
		center += bufferLength
	}
	e.hopIndex++

	half := e.winSize / 2
	var start, end int
	if e.winSize%2 == 0 {
		start = maxInt(0, center-half-1)
	} else {
		start = maxInt(0, center-half)
	}
	end = center + half // inclusive, clipped below

	available := totalAvailable(trailing, central, leading, bufferLength, terminationIndex)
	if end >= available {
		end = available - 1
	}
	if end < start {
		return 0, invariantErr("sigma window has no samples")
	}

	sum, sumSq, n := accumulate(trailing, central, leading, bufferLength, start, end)
	if n <= 0 {
		return 0, invariantErr("sigma window is empty")
	}

	mean := sum / float64(n)
	meanSq := sumSq / float64(n)
	variance := meanSq - mean*mean
	if variance < 0 {
		variance = 0
	}
	sigma := e.scaleFactor * math.Sqrt(variance)
	return sigma, nil
}

// totalAvailable returns how many logical samples are reachable starting
// from the trailing buffer (or central, if trailing is absent) through the
// leading buffer, honoring a termination index on the leading buffer.
func totalAvailable(trailing, central, leading *triplebuffer.Buffer, bufferLength, terminationIndex int) int {
	count := 0
	if trailing != nil {
		count += bufferLength
	}
	count += bufferLength
	if leading != nil {
		if terminationIndex >= 0 {
			count += terminationIndex
		} else {
			count += bufferLength
		}
	}
	return count
}

// accumulate sums x and x^2 over logical indices [start,end] (inclusive),
// where logical index 0 is the first sample of trailing (if present) or of
// central otherwise, reading across the trailing/central/leading buffers as
// needed.
func accumulate(trailing, central, leading *triplebuffer.Buffer, bufferLength, start, end int) (sum, sumSq float64, n int) {
	trailingBase := 0
	centralBase := 0
	if trailing != nil {
		centralBase = bufferLength
	}
	leadingBase := centralBase + bufferLength

	read := func(logical int) (float64, bool) {
		switch {
		case trailing != nil && logical >= trailingBase && logical < trailingBase+bufferLength:
			return trailing.Data[logical-trailingBase], true
		case logical >= centralBase && logical < centralBase+bufferLength:
			return central.Data[logical-centralBase], true
		case leading != nil && logical >= leadingBase && logical < leadingBase+bufferLength:
			return leading.Data[logical-leadingBase], true
		default:
			return 0, false
		}
	}

	for i := start; i <= end; i++ {
		v, ok := read(i)
		if !ok {
			continue
		}
		sum += v
		sumSq += v * v
		n++
	}
	return sum, sumSq, n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func invariantErr(msg string) error {
	return errors.New(errors.NewStd(msg)).
		Component("sigopt").
		Category(errors.CategorySigma).
		Build()
}
