// Package telemetry wires internal/errors' reporter seam to Sentry, so
// high-priority EnhancedErrors are captured without any other package
// importing sentry-go directly.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/logging"
)

// Config controls whether telemetry is active and where it reports.
type Config struct {
	Enabled bool
	DSN     string
}

// Init starts Sentry and registers its reporter with internal/errors,
// if cfg.Enabled. Call Shutdown before process exit to flush pending
// events. A disabled Config is a no-op — errors.SetReporter is left
// untouched so Build() stays on its cheap path.
func Init(cfg Config) (func(), error) {
	if !cfg.Enabled {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.DSN}); err != nil {
		return nil, wrapErr("initialize sentry", err)
	}

	logger := logging.ForService("telemetry")
	errors.SetReporter(func(ee *errors.EnhancedError) {
		switch ee.GetPriority() {
		case errors.PriorityHigh, errors.PriorityCritical:
			sentry.CaptureException(ee)
			ee.MarkReported()
			logger.Debug("reported error to sentry", "component", ee.GetComponent(), "category", ee.GetCategory())
		}
	})

	shutdown := func() {
		errors.SetReporter(nil)
		sentry.Flush(2 * time.Second)
	}
	return shutdown, nil
}

func wrapErr(msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component("telemetry").
		Category(errors.CategorySystem).
		Context("cause", cause.Error()).
		Build()
}
