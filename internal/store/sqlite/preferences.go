package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
)

// PreferenceStore implements store.PreferenceStore on sqlite
type PreferenceStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewPreferenceStore creates a sqlite-backed preference store
func NewPreferenceStore(db *sql.DB, log *zap.Logger) *PreferenceStore {
	return &PreferenceStore{db: db, log: log}
}

// Set creates or replaces the preference for (user, category, channel)
func (s *PreferenceStore) Set(ctx context.Context, preference *domain.Preference) error {
	if preference.ID == "" {
		preference.ID = uuid.NewString()
	}
	now := time.Now()
	if preference.CreatedAt.IsZero() {
		preference.CreatedAt = now
	}
	preference.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (id, user_id, category, channel, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category, channel)
		DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
		preference.ID, preference.UserID, preference.Category, preference.Channel,
		preference.Enabled, preference.CreatedAt, preference.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// SetBulk applies multiple preferences in one transaction
func (s *PreferenceStore) SetBulk(ctx context.Context, preferences []*domain.Preference) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.log.Error("Failed to roll back preference transaction", zap.Error(err))
		}
	}()

	now := time.Now()
	for _, preference := range preferences {
		if preference.ID == "" {
			preference.ID = uuid.NewString()
		}
		if preference.CreatedAt.IsZero() {
			preference.CreatedAt = now
		}
		preference.UpdatedAt = now

		_, err := tx.ExecContext(ctx, `
			INSERT INTO preferences (id, user_id, category, channel, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, category, channel)
			DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
			preference.ID, preference.UserID, preference.Category, preference.Channel,
			preference.Enabled, preference.CreatedAt, preference.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert preference for user %s: %w", preference.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}

// List returns all preferences for a user
func (s *PreferenceStore) List(ctx context.Context, userID string) ([]*domain.Preference, error) {
	return s.query(ctx, `
		SELECT id, user_id, category, channel, enabled, created_at, updated_at
		FROM preferences WHERE user_id = ? ORDER BY category, channel`, userID)
}

// ListByCategory returns a user's preferences for one category
func (s *PreferenceStore) ListByCategory(ctx context.Context, userID string, category domain.Category) ([]*domain.Preference, error) {
	return s.query(ctx, `
		SELECT id, user_id, category, channel, enabled, created_at, updated_at
		FROM preferences WHERE user_id = ? AND category = ? ORDER BY channel`, userID, category)
}

// ListEnabled returns a user's enabled preferences for one category
func (s *PreferenceStore) ListEnabled(ctx context.Context, userID string, category domain.Category) ([]*domain.Preference, error) {
	return s.query(ctx, `
		SELECT id, user_id, category, channel, enabled, created_at, updated_at
		FROM preferences WHERE user_id = ? AND category = ? AND enabled = 1 ORDER BY channel`, userID, category)
}

func (s *PreferenceStore) query(ctx context.Context, query string, args ...any) ([]*domain.Preference, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Error("Failed to close preference rows", zap.Error(err))
		}
	}()

	var preferences []*domain.Preference
	for rows.Next() {
		var preference domain.Preference
		err := rows.Scan(&preference.ID, &preference.UserID, &preference.Category,
			&preference.Channel, &preference.Enabled, &preference.CreatedAt, &preference.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference row: %w", err)
		}
		preferences = append(preferences, &preference)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preference rows: %w", err)
	}
	return preferences, nil
}
