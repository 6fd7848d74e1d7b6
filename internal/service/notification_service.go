package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/billing-service/internal/config"
	"github.com/spec-kit/billing-service/internal/events"
)

// NotificationService turns invoice activity into owner notifications. Email
// and webhook delivery are stubs that only log.
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
	n.dispatcher.Subscribe(events.EventInvoiceCreated, n.handleInvoiceCreated)
	n.dispatcher.Subscribe(events.EventInvoiceStatusChanged, n.handleInvoiceStatusChanged)
}

func (n *NotificationService) handleInvoiceCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("InvoiceCreated",
		zap.String("invoice_id", event.InvoiceID),
		zap.String("customer_id", event.CustomerID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleInvoiceStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("InvoiceStatusChanged",
		zap.String("invoice_id", event.InvoiceID),
		zap.String("customer_id", event.CustomerID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("invoice_id", event.InvoiceID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("invoice_id", event.InvoiceID),
		zap.String("event_type", string(event.Type)))
}
