// Package transient scans a detection function for onset/offset pairs by
// matching a parametric kernel family against local windows and picking
// the best-fitting alternation of onsets and offsets.
package transient

import (
	"math"

	"github.com/onsetgo/correntropy/internal/errors"
)

// Kind distinguishes an onset from an offset event.
type Kind int

const (
	Onset Kind = iota
	Offset
)

func (k Kind) String() string {
	if k == Offset {
		return "offset"
	}
	return "onset"
}

// Event is one detected transient: its kind, its sample index into the
// detection function, and the fitness score (higher is a better match)
// the kernel search found there.
type Event struct {
	Kind    Kind
	Index   int
	Fitness float64
}

// Config tunes the kernel search.
type Config struct {
	// WindowSize is how many detection-function samples the kernel spans,
	// centered on the candidate index: WindowSize/2 on each side (an odd
	// WindowSize spans WindowSize-1 samples).
	WindowSize int
	// KernelShape is the denominator constant in the z/(shape-|z|) kernel
	// family; 1.15 matches the shape used in reference fitting.
	KernelShape float64
	// MinFitness discards candidates whose best-fit score falls below it.
	MinFitness float64
}

func (c Config) validate() error {
	if c.WindowSize <= 0 {
		return invariantErr("windowSize must be positive")
	}
	if c.KernelShape <= 0 {
		return invariantErr("kernelShape must be positive")
	}
	return nil
}

// kernel evaluates the onset-shaped template z/(shape-|z|) at z in
// [-1,1], scaled so it is positive going for an onset and negated for
// an offset (the offset kernel is the onset kernel time-reversed).
func kernel(z, shape float64, kind Kind) float64 {
	if kind == Offset {
		z = -z
	}
	return z / (shape - math.Abs(z))
}

// fitness computes the negated mean squared error between window and the
// kernel evaluated over the same span, so higher fitness means a closer
// match: MSE is always >= 0, and "maximize fitness" then finds the best
// fit instead of the worst one.
func fitness(window []float32, shape float64, kind Kind) float64 {
	n := len(window)
	if n < 2 {
		return math.Inf(-1)
	}
	var sse float64
	for i, v := range window {
		z := -1 + 2*float64(i)/float64(n-1)
		k := kernel(z, shape, kind)
		d := float64(v) - k
		sse += d * d
	}
	return -sse / float64(n)
}

// Detect scans detFunc for the best-fitting alternating sequence of
// onsets and offsets, one candidate index at a time, each scored
// independently by Config.WindowSize around it. It alternates: after an
// onset the next accepted event must be an offset, and vice versa,
// matching how a note's energy rises then falls.
func Detect(detFunc []float32, cfg Config) ([]Event, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	half := cfg.WindowSize / 2
	if len(detFunc) < cfg.WindowSize {
		return nil, nil
	}

	var events []Event
	expect := Onset

	for i := half; i <= len(detFunc)-half; i++ {
		window := detFunc[i-half : i+half]

		onsetFit := fitness(window, cfg.KernelShape, Onset)
		offsetFit := fitness(window, cfg.KernelShape, Offset)

		var best Event
		if expect == Onset {
			best = Event{Kind: Onset, Index: i, Fitness: onsetFit}
		} else {
			best = Event{Kind: Offset, Index: i, Fitness: offsetFit}
		}

		if best.Fitness < cfg.MinFitness {
			continue
		}
		// Suppress a run of nearby candidates of the same kind, keeping
		// only the locally best one, the way a peak-pick would.
		if len(events) > 0 && events[len(events)-1].Kind == best.Kind && i-events[len(events)-1].Index <= half {
			if best.Fitness > events[len(events)-1].Fitness {
				events[len(events)-1] = best
			}
			continue
		}

		events = append(events, best)
		if expect == Onset {
			expect = Offset
		} else {
			expect = Onset
		}
	}

	return events, nil
}

func invariantErr(msg string) error {
	return errors.New(errors.NewStd(msg)).
		Component("transient").
		Category(errors.CategoryTransient).
		Build()
}
