package store

import (
	"context"
	"errors"

	"github.com/selvester69/notifications/internal/domain"
)

// ErrNotFound is returned when a looked-up record does not exist
var ErrNotFound = errors.New("record not found")

// TemplateStore defines the interface for template storage operations
type TemplateStore interface {
	// Create stores a new template
	Create(ctx context.Context, template *domain.Template) error

	// GetByID returns the template with the given ID, or ErrNotFound
	GetByID(ctx context.Context, id string) (*domain.Template, error)

	// Lookup returns the active template for (name, channel, language),
	// or ErrNotFound
	Lookup(ctx context.Context, name string, channel domain.Channel, language string) (*domain.Template, error)

	// Update replaces the template with the given ID
	Update(ctx context.Context, template *domain.Template) error

	// Delete removes the template with the given ID
	Delete(ctx context.Context, id string) error
}

// PreferenceStore defines the interface for preference storage operations
type PreferenceStore interface {
	// Set creates or replaces the preference for (user, category, channel)
	Set(ctx context.Context, preference *domain.Preference) error

	// SetBulk applies multiple preferences in one call
	SetBulk(ctx context.Context, preferences []*domain.Preference) error

	// List returns all preferences for a user
	List(ctx context.Context, userID string) ([]*domain.Preference, error)

	// ListByCategory returns a user's preferences for one category
	ListByCategory(ctx context.Context, userID string, category domain.Category) ([]*domain.Preference, error)

	// ListEnabled returns a user's enabled preferences for one category.
	// An empty result is not an error: it means do not notify.
	ListEnabled(ctx context.Context, userID string, category domain.Category) ([]*domain.Preference, error)
}

// TrackingStore defines the interface for delivery audit storage
type TrackingStore interface {
	// Record appends delivery records; best-effort from the caller's
	// point of view
	Record(ctx context.Context, records []*domain.DeliveryRecord) error

	// ListByUser returns a user's most recent delivery records
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.DeliveryRecord, error)

	// InitSchema initializes the storage schema
	InitSchema(ctx context.Context) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store and releases resources
	Close() error
}
