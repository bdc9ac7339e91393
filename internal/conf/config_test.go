package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.FilterBank.NumChannels = 32
	s.FilterBank.MinFreq = 80
	s.FilterBank.MaxFreq = 4000
	s.FilterBank.Samplerate = 11025
	s.DetFunc.CorrWinSize = 138
	s.DetFunc.Hopsize = 55
	s.DetFunc.SigWinSize = 77175
	s.DetFunc.ScaleFactor = 1.05
	s.Transient.MinKernel = 4
	s.Transient.MaxKernel = 1500
	return s
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, Validate(validSettings()))
}

func TestValidateRejectsBadSamplerate(t *testing.T) {
	s := validSettings()
	s.FilterBank.Samplerate = 44100
	assert.Error(t, Validate(s))
}

func TestValidateRejectsNegativeThreads(t *testing.T) {
	s := validSettings()
	s.DetFunc.DedicatedThreads = -1
	assert.Error(t, Validate(s))
}

func TestValidateRejectsMaxFreqBelowMin(t *testing.T) {
	s := validSettings()
	s.FilterBank.MaxFreq = 10
	assert.Error(t, Validate(s))
}

func TestEnvOverrideAppliesDSN(t *testing.T) {
	t.Setenv("ONSETGO_DATASTORE_DSN", "postgres://example")
	s := validSettings()
	applyEnvOverrides(s)
	assert.Equal(t, "postgres://example", s.Datastore.DSN)
}
