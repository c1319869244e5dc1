package telegram

import (
	"context"
	"fmt"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
)

// Notifier forwards run outcomes to the Telegram channel.
type Notifier struct {
	client Client
	logger logger.Logger
}

var _ events.Sink = (*Notifier)(nil)

func NewNotifier(client Client, log logger.Logger) *Notifier {
	return &Notifier{client: client, logger: log.WithComponent("TelegramNotifier")}
}

func (n *Notifier) Emit(_ context.Context, ev domain.Event) {
	var msg string
	switch ev.Kind {
	case domain.EventPublishSucceeded:
		msg = fmt.Sprintf("✅ Published %v/%v (media %v)", ev.Attrs["date"], ev.Attrs["filename"], ev.Attrs["media_id"])
	case domain.EventPublishFailed:
		msg = fmt.Sprintf("❌ Publish of %v/%v failed at %v: %v", ev.Attrs["date"], ev.Attrs["filename"], ev.Attrs["phase"], ev.Attrs["message"])
	default:
		return
	}

	if err := n.client.SendMessageToChannel(msg); err != nil {
		n.logger.Warn("Failed to notify telegram channel", "event", string(ev.Kind), "error", err)
	}
}
