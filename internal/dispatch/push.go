package dispatch

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/domain"
)

// PushSender delivers rendered messages through a push gateway keyed
// by device token
type PushSender struct {
	gatewayURL string
	client     *http.Client
	log        *zap.Logger
}

// NewPushSender creates a push sender from the sender config
func NewPushSender(cfg config.Senders, log *zap.Logger) *PushSender {
	return &PushSender{
		gatewayURL: cfg.PushGatewayURL,
		client:     http.DefaultClient,
		log:        log,
	}
}

// Channel returns the delivery channel this sender handles
func (s *PushSender) Channel() domain.Channel {
	return domain.ChannelPush
}

// Deliver sends the rendered message as a push notification
func (s *PushSender) Deliver(ctx context.Context, recipientID string, message domain.RenderedMessage) error {
	if recipientID == "" {
		return InvalidRecipient(recipientID)
	}

	payload := map[string]string{
		"token": recipientID,
		"title": message.Subject,
		"body":  message.Body,
	}

	if err := postJSON(ctx, s.client, s.gatewayURL, payload); err != nil {
		return err
	}

	s.log.Info("Push notification delivered", zap.String("recipient", recipientID))
	return nil
}
