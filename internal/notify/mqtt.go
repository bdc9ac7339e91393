// Package notify publishes detected transients to MQTT as JSON and to
// generic webhook/push services (via shoutrrr) as plain text rendered
// with html2text.
package notify

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/logging"
)

// MQTTConfig mirrors conf.Settings.Notify.MQTT.
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	Topic    string
	Username string
	Password string
}

// MQTTPublisher publishes one JSON message per transient to cfg.Topic.
type MQTTPublisher struct {
	cfg    MQTTConfig
	client mqtt.Client
}

type transientMessage struct {
	SessionID string    `json:"sessionId"`
	Kind      string    `json:"kind"`
	Index     int       `json:"index"`
	Fitness   float64   `json:"fitness"`
	Time      time.Time `json:"time"`
}

// NewMQTTPublisher connects to cfg.Broker and returns a ready publisher.
func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("onsetgo-notify").
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, wrapErr("notify-mqtt", errors.CategoryMQTTConnect, "failed to connect to broker", token.Error())
	}
	logging.ForService("notify").Debug("mqtt publisher connected", "broker", cfg.Broker, "topic", cfg.Topic)
	return &MQTTPublisher{cfg: cfg, client: client}, nil
}

// Publish sends event as a JSON message on cfg.Topic, QoS 1.
func (p *MQTTPublisher) Publish(event events.TransientEvent) error {
	msg := transientMessage{
		SessionID: event.SessionID,
		Kind:      event.Kind.String(),
		Index:     event.Index,
		Fitness:   event.Fitness,
		Time:      event.Time,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return wrapErr("notify-mqtt", errors.CategoryMQTTPublish, "failed to marshal transient", err)
	}

	token := p.client.Publish(p.cfg.Topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return wrapErr("notify-mqtt", errors.CategoryMQTTPublish, "failed to publish", token.Error())
	}
	return nil
}

// Close disconnects the underlying MQTT client.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// EventConsumer adapts MQTTPublisher into events.Consumer.
type EventConsumer struct {
	Publisher *MQTTPublisher
}

func (EventConsumer) Name() string { return "notify-mqtt" }

func (c EventConsumer) Process(_ context.Context, event events.TransientEvent) error {
	return c.Publisher.Publish(event)
}

func wrapErr(component string, category errors.ErrorCategory, msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component(component).
		Category(category).
		Context("cause", cause.Error()).
		Build()
}
