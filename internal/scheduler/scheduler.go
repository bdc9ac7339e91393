// Package scheduler gates a live capture session to the hours bird-call
// activity is actually dense: dawn and dusk. It is new functionality
// beyond spec.md's streaming core, grounded in the onset-detection
// paper's domain rather than in the teacher's BirdNET-specific range
// filter, and gives the lat/long settings fields (present in the
// teacher's config but unused there) a concrete consumer.
package scheduler

import (
	"time"

	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/sj14/astral"
)

// Config locates the observer and sizes the active window around each
// sunrise/sunset.
type Config struct {
	Enabled   bool
	Latitude  float64
	Longitude float64
	// Window is how long before and after sunrise/sunset counts as
	// "active"; defaults to 90 minutes if zero.
	Window time.Duration
}

// Gate answers InActiveWindow for a configured observer.
type Gate struct {
	cfg Config
	obs astral.Observer
}

// New builds a Gate from cfg. When cfg.Enabled is false, InActiveWindow
// always reports true, so a caller can wire this unconditionally and
// let disabling it be a pure pass-through.
func New(cfg Config) *Gate {
	if cfg.Window <= 0 {
		cfg.Window = 90 * time.Minute
	}
	return &Gate{
		cfg: cfg,
		obs: astral.Observer{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
	}
}

// InActiveWindow reports whether t falls within Window of that day's
// sunrise or sunset at the configured observer.
func (g *Gate) InActiveWindow(t time.Time) (bool, error) {
	if !g.cfg.Enabled {
		return true, nil
	}

	sunrise, err := astral.Sunrise(g.obs, t)
	if err != nil {
		return false, wrapErr("compute sunrise", err)
	}
	sunset, err := astral.Sunset(g.obs, t)
	if err != nil {
		return false, wrapErr("compute sunset", err)
	}

	return within(t, sunrise, g.cfg.Window) || within(t, sunset, g.cfg.Window), nil
}

func within(t, center time.Time, window time.Duration) bool {
	diff := t.Sub(center)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}

func wrapErr(msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component("scheduler").
		Category(errors.CategorySystem).
		Context("cause", cause.Error()).
		Build()
}
