package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
)

// Registry maps channels to their senders. It is built once at startup
// and never mutated afterwards, so dispatch needs no locking.
type Registry struct {
	senders map[domain.Channel]Sender
	timeout time.Duration
	log     *zap.Logger
}

// NewRegistry builds a registry from the full set of senders.
// A duplicate channel is a configuration error.
func NewRegistry(timeout time.Duration, log *zap.Logger, senders ...Sender) (*Registry, error) {
	byChannel := make(map[domain.Channel]Sender, len(senders))
	for _, s := range senders {
		if _, exists := byChannel[s.Channel()]; exists {
			return nil, fmt.Errorf("duplicate sender registered for channel %s", s.Channel())
		}
		byChannel[s.Channel()] = s
	}

	return &Registry{
		senders: byChannel,
		timeout: timeout,
		log:     log,
	}, nil
}

// Channels returns the set of channels with a registered sender
func (r *Registry) Channels() []domain.Channel {
	channels := make([]domain.Channel, 0, len(r.senders))
	for channel := range r.senders {
		channels = append(channels, channel)
	}
	return channels
}

// Dispatch delivers a rendered message on its channel and reports the
// attempt as outcome data. An unregistered channel or a failing sender
// never propagates an error past this boundary: the caller must be
// able to keep fanning out to other channels.
func (r *Registry) Dispatch(ctx context.Context, recipientID string, message domain.RenderedMessage) domain.DispatchOutcome {
	sender, ok := r.senders[message.Channel]
	if !ok {
		r.log.Warn("No sender registered for channel",
			zap.String("channel", string(message.Channel)))
		return domain.DispatchOutcome{
			Channel:   message.Channel,
			ErrorKind: domain.ErrorKindChannelNotSupported,
			Detail:    fmt.Sprintf("no sender registered for channel %s", message.Channel),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// senders that never observe the context must not be able to hold
	// the branch open past the timeout, so the delivery runs detached
	// and the branch stops waiting once the deadline passes
	resultCh := make(chan error, 1)
	go func() {
		resultCh <- r.deliver(ctx, sender, recipientID, message)
	}()

	var err error
	var kind domain.ErrorKind
	select {
	case err = <-resultCh:
		if err == nil {
			return domain.DispatchOutcome{Channel: message.Channel, Success: true}
		}
		kind = classify(err)
		if ctx.Err() == context.DeadlineExceeded {
			kind = domain.ErrorKindTransient
			err = fmt.Errorf("dispatch timed out after %s: %w", r.timeout, err)
		}
	case <-ctx.Done():
		kind = domain.ErrorKindTransient
		err = fmt.Errorf("dispatch timed out after %s: %w", r.timeout, ctx.Err())
	}

	r.log.Warn("Dispatch failed",
		zap.String("channel", string(message.Channel)),
		zap.String("recipient_id", recipientID),
		zap.String("error_kind", string(kind)),
		zap.Error(err))

	return domain.DispatchOutcome{
		Channel:   message.Channel,
		ErrorKind: kind,
		Detail:    err.Error(),
	}
}

// deliver invokes the sender, converting a panic into an error so a
// misbehaving sender cannot abort the fan-out loop
func (r *Registry) deliver(ctx context.Context, sender Sender, recipientID string, message domain.RenderedMessage) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = Permanent(fmt.Errorf("sender panicked: %v", recovered))
		}
	}()
	return sender.Deliver(ctx, recipientID, message)
}
