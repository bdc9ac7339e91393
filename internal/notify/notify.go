package notify

import (
	"context"

	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/logging"
)

// Config mirrors conf.Settings.Notify.
type Config struct {
	MQTT MQTTConfig
	Push ShoutrrrConfig
}

// Fanout dispatches each transient to every enabled notifier, continuing
// past individual failures and logging each one.
type Fanout struct {
	mqtt *MQTTPublisher
	push *ShoutrrrNotifier
}

// New builds a Fanout from cfg, constructing only the notifiers whose
// Enabled flag is set.
func New(cfg Config) (*Fanout, error) {
	f := &Fanout{}
	if cfg.MQTT.Enabled {
		pub, err := NewMQTTPublisher(cfg.MQTT)
		if err != nil {
			return nil, err
		}
		f.mqtt = pub
	}
	if cfg.Push.Enabled {
		n, err := NewShoutrrrNotifier(cfg.Push)
		if err != nil {
			return nil, err
		}
		f.push = n
	}
	return f, nil
}

// Close releases resources held by any enabled notifier.
func (f *Fanout) Close() {
	if f.mqtt != nil {
		f.mqtt.Close()
	}
}

func (Fanout) Name() string { return "notify" }

// Process satisfies events.Consumer, fanning event out to every enabled
// notifier in turn.
func (f *Fanout) Process(ctx context.Context, event events.TransientEvent) error {
	logger := logging.ForService("notify")
	var firstErr error
	if f.mqtt != nil {
		if err := f.mqtt.Publish(event); err != nil {
			logger.Error("mqtt publish failed", "error", err)
			firstErr = err
		}
	}
	if f.push != nil {
		if err := f.push.Notify(event); err != nil {
			logger.Error("push notify failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

var _ events.Consumer = (*Fanout)(nil)
