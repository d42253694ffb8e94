package dispatch

import (
	"context"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+[0-9]{7,15}$`)

// SMSSender delivers rendered messages through an SMS gateway
type SMSSender struct {
	gatewayURL string
	client     *http.Client
	log        *zap.Logger
}

// NewSMSSender creates an SMS sender from the sender config
func NewSMSSender(cfg config.Senders, log *zap.Logger) *SMSSender {
	return &SMSSender{
		gatewayURL: cfg.SMSGatewayURL,
		client:     http.DefaultClient,
		log:        log,
	}
}

// Channel returns the delivery channel this sender handles
func (s *SMSSender) Channel() domain.Channel {
	return domain.ChannelSMS
}

// Deliver sends the rendered message body as an SMS. The subject is
// dropped: SMS has no subject line.
func (s *SMSSender) Deliver(ctx context.Context, recipientID string, message domain.RenderedMessage) error {
	if !phonePattern.MatchString(recipientID) {
		return InvalidRecipient(recipientID)
	}

	payload := map[string]string{
		"to":   recipientID,
		"text": message.Body,
	}

	if err := postJSON(ctx, s.client, s.gatewayURL, payload); err != nil {
		return err
	}

	s.log.Info("SMS delivered", zap.String("recipient", recipientID))
	return nil
}
