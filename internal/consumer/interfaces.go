package consumer

import (
	"context"

	"github.com/selvester69/notifications/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.Event, error)
}

// EventProcessor runs the notification fan-out for one event
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *domain.Event) ([]domain.DispatchOutcome, error)
}
