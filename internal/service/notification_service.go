package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/config"
	"github.com/spec-kit/helpdesk-automation/internal/events"
	"github.com/spec-kit/helpdesk-automation/pkg/util"
)

// NotificationService forwards engine events to the notification
// collaborator. Delivery is a non-critical side effect: a failed send is
// logged and swallowed, it never fails the operation that produced the
// event. Exactly-once semantics come from the SLA clock's notified
// markers, not from this layer.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSlaThresholdCrossed, n.handleSlaThresholdCrossed)
	n.dispatcher.Subscribe(events.EventAutomationFailed, n.handleAutomationFailed)
}

func (n *NotificationService) handleSlaThresholdCrossed(ctx context.Context, event events.Event) error {
	n.logger.Info("SlaThresholdCrossed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	util.BestEffort(n.logger, "sla threshold email", func() error {
		return n.sendEmailNotificationStub(ctx, event)
	})
	util.BestEffort(n.logger, "sla threshold webhook", func() error {
		return n.sendWebhookNotificationStub(ctx, event)
	})
	return nil
}

func (n *NotificationService) handleAutomationFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("AutomationTaskFailed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	util.BestEffort(n.logger, "automation failure webhook", func() error {
		return n.sendWebhookNotificationStub(ctx, event)
	})
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) error {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return nil
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	return nil
}
