package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
	"github.com/selvester69/notifications/internal/store"
)

// TemplateStore implements store.TemplateStore on sqlite
type TemplateStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewTemplateStore creates a sqlite-backed template store
func NewTemplateStore(db *sql.DB, log *zap.Logger) *TemplateStore {
	return &TemplateStore{db: db, log: log}
}

// Create stores a new template
func (s *TemplateStore) Create(ctx context.Context, template *domain.Template) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	now := time.Now()
	template.CreatedAt = now
	template.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, channel, language, subject, body, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		template.ID, template.Name, template.Channel, template.Language,
		template.Subject, template.Body, template.Active, template.CreatedAt, template.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}

	s.log.Info("Template created",
		zap.String("id", template.ID),
		zap.String("name", template.Name),
		zap.String("channel", string(template.Channel)))
	return nil
}

// GetByID returns the template with the given ID
func (s *TemplateStore) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, channel, language, subject, body, active, created_at, updated_at
		FROM templates WHERE id = ?`, id)
	return scanTemplate(row)
}

// Lookup returns the active template for (name, channel, language)
func (s *TemplateStore) Lookup(ctx context.Context, name string, channel domain.Channel, language string) (*domain.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, channel, language, subject, body, active, created_at, updated_at
		FROM templates WHERE name = ? AND channel = ? AND language = ? AND active = 1`,
		name, channel, language)
	return scanTemplate(row)
}

// Update replaces the template with the given ID
func (s *TemplateStore) Update(ctx context.Context, template *domain.Template) error {
	template.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name = ?, channel = ?, language = ?, subject = ?, body = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		template.Name, template.Channel, template.Language,
		template.Subject, template.Body, template.Active, template.UpdatedAt, template.ID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes the template with the given ID
func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanTemplate(row *sql.Row) (*domain.Template, error) {
	var template domain.Template
	err := row.Scan(&template.ID, &template.Name, &template.Channel, &template.Language,
		&template.Subject, &template.Body, &template.Active, &template.CreatedAt, &template.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}
	return &template, nil
}
