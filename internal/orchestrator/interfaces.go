package orchestrator

import (
	"context"

	"github.com/selvester69/notifications/internal/domain"
)

// TemplateResolver is the template collaborator as seen by the
// orchestrator: a single read
type TemplateResolver interface {
	Lookup(ctx context.Context, name string, channel domain.Channel, language string) (*domain.Template, error)
}

// PreferenceReader is the preference collaborator as seen by the
// orchestrator: a single read
type PreferenceReader interface {
	ListEnabled(ctx context.Context, userID string, category domain.Category) ([]*domain.Preference, error)
}

// Tracker records delivery outcomes, best-effort
type Tracker interface {
	Record(ctx context.Context, records []*domain.DeliveryRecord) error
}

// Dispatcher fans a rendered message out to its channel sender
type Dispatcher interface {
	Dispatch(ctx context.Context, recipientID string, message domain.RenderedMessage) domain.DispatchOutcome
}
