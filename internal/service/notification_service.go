package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/config"
	"github.com/spec-kit/sla-dashboard/internal/events"
)

// NotificationService turns SLA events into operator notifications. Delivery is
// not implemented: e-mail and webhook sends are logged when their target is set.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, logger: logger, cfg: cfg}
}

// RegisterHandlers subscribes to SLA events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSLAStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventSLABreached, n.handleBreached)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	subject, err := notificationSubject(event)
	if err != nil {
		return err
	}
	n.logger.Info("sla status changed", zap.Int64("ticket_id", event.TicketID), zap.String("subject", subject))
	n.sendWebhook(ctx, event, subject)
	return nil
}

func (n *NotificationService) handleBreached(ctx context.Context, event events.Event) error {
	subject, err := notificationSubject(event)
	if err != nil {
		return err
	}
	n.logger.Warn("sla breached", zap.Int64("ticket_id", event.TicketID), zap.String("subject", subject))
	n.sendEmail(ctx, event, subject)
	n.sendWebhook(ctx, event, subject)
	return nil
}

// notificationSubject renders the one-line text shown to operators.
func notificationSubject(event events.Event) (string, error) {
	switch p := event.Payload.(type) {
	case events.SLAStatusChangedPayload:
		return fmt.Sprintf("Chamado #%d: SLA %s -> %s (%.1f%%)", event.TicketID, p.OldStatus, p.NewStatus, p.PercentUsed), nil
	case events.SLABreachedPayload:
		return fmt.Sprintf("Chamado #%d: prazo de %gh vencido (P%d, %.2fh decorridas)",
			event.TicketID, p.BudgetHours, p.Priority, p.ElapsedHours), nil
	default:
		return "", fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event, subject string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_id", event.ID),
		zap.String("subject", subject))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event, subject string) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", subject))
}
