package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/domain"
)

// slackAPI is the slice of the Slack client the sender uses
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackSender delivers rendered messages to a Slack channel or user
type SlackSender struct {
	client slackAPI
	log    *zap.Logger
}

// NewSlackSender creates a Slack sender from the sender config
func NewSlackSender(cfg config.Senders, log *zap.Logger) *SlackSender {
	return &SlackSender{
		client: slack.New(cfg.SlackToken),
		log:    log,
	}
}

// Channel returns the delivery channel this sender handles
func (s *SlackSender) Channel() domain.Channel {
	return domain.ChannelSlack
}

// Deliver posts the rendered message to the recipient's Slack channel
func (s *SlackSender) Deliver(ctx context.Context, recipientID string, message domain.RenderedMessage) error {
	if recipientID == "" {
		return InvalidRecipient(recipientID)
	}

	text := message.Body
	if message.Subject != "" {
		text = fmt.Sprintf("*%s*\n%s", message.Subject, message.Body)
	}

	_, _, err := s.client.PostMessageContext(ctx, recipientID, slack.MsgOptionText(text, false))
	if err != nil {
		return classifySlackError(recipientID, err)
	}

	s.log.Info("Slack message delivered", zap.String("recipient", recipientID))
	return nil
}

func classifySlackError(recipientID string, err error) error {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return Transient(err)
	}

	switch {
	case strings.Contains(err.Error(), "channel_not_found"),
		strings.Contains(err.Error(), "user_not_found"):
		return InvalidRecipient(recipientID)
	case strings.Contains(err.Error(), "invalid_auth"),
		strings.Contains(err.Error(), "not_authed"):
		return Permanent(err)
	default:
		return Transient(err)
	}
}
