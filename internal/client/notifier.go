package client

import (
	"context"

	"github.com/teampulse/backend/config"
	"github.com/teampulse/backend/pkg/api"
	"github.com/teampulse/backend/pkg/xcontext"
)

// Notifier delivers events of interest to an external notification service.
// Delivery is fire-and-forget: failures are logged and never abort or roll
// back the operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]any)
}

type webhookNotifier struct {
	apiGenerator api.Generator
	enabled      bool
}

func NewWebhookNotifier(cfg config.NotificationConfigs) *webhookNotifier {
	return &webhookNotifier{
		apiGenerator: api.NewGenerator(cfg.WebhookURL),
		enabled:      cfg.WebhookURL != "",
	}
}

func (n *webhookNotifier) Notify(ctx context.Context, event string, payload map[string]any) {
	if !n.enabled {
		return
	}

	body := api.JSON{"event": event}
	for k, v := range payload {
		body[k] = v
	}

	resp, err := n.apiGenerator.New("/events").Body(body).POST(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot deliver %s notification: %v", event, err)
		return
	}

	if resp.Code != 200 {
		xcontext.Logger(ctx).Warnf("Notification service answered %d for %s", resp.Code, event)
	}
}
