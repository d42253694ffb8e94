package dispatch

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/domain"
)

// EmailSender delivers rendered messages over SMTP
type EmailSender struct {
	addr string
	from string
	send func(addr, from, to string, payload []byte) error
	log  *zap.Logger
}

// NewEmailSender creates an email sender from the sender config
func NewEmailSender(cfg config.Senders, log *zap.Logger) *EmailSender {
	return &EmailSender{
		addr: net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.SMTPFrom,
		send: sendSMTP,
		log:  log,
	}
}

// Channel returns the delivery channel this sender handles
func (s *EmailSender) Channel() domain.Channel {
	return domain.ChannelEmail
}

// Deliver sends the rendered message as an email
func (s *EmailSender) Deliver(ctx context.Context, recipientID string, message domain.RenderedMessage) error {
	if !strings.Contains(recipientID, "@") {
		return InvalidRecipient(recipientID)
	}

	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.from, recipientID, message.Subject, message.Body)

	if err := s.send(s.addr, s.from, recipientID, []byte(payload)); err != nil {
		return Transient(fmt.Errorf("smtp send: %w", err))
	}

	s.log.Info("Email delivered",
		zap.String("recipient", recipientID),
		zap.String("subject", message.Subject))

	return nil
}

func sendSMTP(addr, from, to string, payload []byte) error {
	return smtp.SendMail(addr, nil, from, []string{to}, payload)
}
