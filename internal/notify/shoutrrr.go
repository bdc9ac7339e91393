package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/k3a/html2text"
	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/logging"
)

// ShoutrrrConfig mirrors conf.Settings.Notify.Push: any number of
// shoutrrr service URLs (Discord, Slack, Telegram, generic webhook, ...).
type ShoutrrrConfig struct {
	Enabled bool
	URLs    []string
}

// ShoutrrrNotifier renders a short HTML summary of each transient and
// sends it, converted to plain text, to every configured service URL.
type ShoutrrrNotifier struct {
	sender *shoutrrr.Sender
}

// NewShoutrrrNotifier builds a sender over cfg.URLs.
func NewShoutrrrNotifier(cfg ShoutrrrConfig) (*ShoutrrrNotifier, error) {
	sender, err := shoutrrr.CreateSender(cfg.URLs...)
	if err != nil {
		return nil, wrapErr("notify-push", errors.CategoryNotify, "failed to build shoutrrr sender", err)
	}
	return &ShoutrrrNotifier{sender: sender}, nil
}

// transientSummaryHTML renders a one-line HTML fragment; composed here
// rather than from a template file since the message is this small.
func transientSummaryHTML(event events.TransientEvent) string {
	return fmt.Sprintf(
		"<b>%s</b> detected in session <code>%s</code> at sample %d (fitness %.3f, %s)",
		strings.ToUpper(event.Kind.String()), event.SessionID, event.Index, event.Fitness,
		event.Time.Format("15:04:05"),
	)
}

// Notify renders and pushes a summary for event to every configured
// service. Per-service failures are collected; Notify returns the first
// that shoutrrr reports, after logging all of them.
func (n *ShoutrrrNotifier) Notify(event events.TransientEvent) error {
	text := html2text.HTML2Text(transientSummaryHTML(event))
	errs := n.sender.Send(text, &types.Params{})

	logger := logging.ForService("notify-push")
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		logger.Error("push notification failed", "error", err)
		if first == nil {
			first = err
		}
	}
	if first != nil {
		return wrapErr("notify-push", errors.CategoryNotify, "failed to send push notification", first)
	}
	return nil
}

// PushEventConsumer adapts ShoutrrrNotifier into events.Consumer.
type PushEventConsumer struct {
	Notifier *ShoutrrrNotifier
}

func (PushEventConsumer) Name() string { return "notify-push" }

func (c PushEventConsumer) Process(_ context.Context, event events.TransientEvent) error {
	return c.Notifier.Notify(event)
}
