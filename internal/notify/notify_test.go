package notify

import (
	"testing"
	"time"

	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/transient"
	"github.com/stretchr/testify/assert"
)

func testEvent() events.TransientEvent {
	return events.TransientEvent{
		SessionID: "sess-1",
		Kind:      transient.Onset,
		Index:     4096,
		Fitness:   0.87,
		Time:      time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewFanoutWithNothingEnabledBuildsEmptyFanout(t *testing.T) {
	f, err := New(Config{})
	assert.NoError(t, err)
	assert.Nil(t, f.mqtt)
	assert.Nil(t, f.push)
}

func TestNewFanoutRejectsUnreachableMQTTBroker(t *testing.T) {
	_, err := New(Config{MQTT: MQTTConfig{Enabled: true, Broker: "tcp://127.0.0.1:1", Topic: "onsetgo/transients"}})
	assert.Error(t, err)
}

func TestTransientSummaryHTMLIncludesKindAndSession(t *testing.T) {
	html := transientSummaryHTML(testEvent())
	assert.Contains(t, html, "ONSET")
	assert.Contains(t, html, "sess-1")
}
