package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	err := New(NewStd("boom")).Build()
	assert.Equal(t, ComponentUnknown, err.GetComponent())
	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
	assert.False(t, err.IsReported())
}

func TestBuilderFluentChain(t *testing.T) {
	err := New(NewStd("bad config")).
		Component("detfunc").
		Category(CategoryConfiguration).
		Priority(PriorityHigh).
		Context("field", "hopsize").
		Build()

	assert.Equal(t, "detfunc", err.GetComponent())
	assert.Equal(t, string(CategoryConfiguration), err.GetCategory())
	assert.Equal(t, PriorityHigh, err.GetPriority())
	assert.Equal(t, "hopsize", err.GetContext()["field"])
}

func TestPriorityRejectsInvalidValue(t *testing.T) {
	err := New(NewStd("x")).Priority("urgent!!").Build()
	assert.Equal(t, PriorityMedium, err.GetPriority())
}

func TestIsCategory(t *testing.T) {
	err := New(NewStd("short stream")).Category(CategorySystem).Build()
	require.True(t, IsCategory(err, CategorySystem))
	require.False(t, IsCategory(err, CategoryAudio))
}

func TestSetReporterInvoked(t *testing.T) {
	var got *EnhancedError
	SetReporter(func(ee *EnhancedError) { got = ee })
	defer SetReporter(nil)

	err := New(NewStd("reported")).Build()
	require.NotNil(t, got)
	assert.Equal(t, err.Error(), got.Error())
}

func TestUnwrapAndIs(t *testing.T) {
	base := NewStd("root cause")
	wrapped := Wrap(base).Build()
	assert.True(t, Is(wrapped, base))
	assert.Equal(t, base, Unwrap(wrapped))
}
