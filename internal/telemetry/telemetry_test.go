package telemetry

import (
	"testing"

	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestInitEnabledRegistersReporter(t *testing.T) {
	shutdown, err := Init(Config{Enabled: true, DSN: ""})
	require.NoError(t, err)
	defer shutdown()

	// Building a high-priority error must not panic even with no real DSN
	// configured (sentry.Init with an empty Dsn is a valid, inert client).
	assert.NotPanics(t, func() {
		errors.New(errors.NewStd("boom")).
			Component("test").
			Category(errors.CategorySystem).
			Priority(errors.PriorityHigh).
			Build()
	})
}
