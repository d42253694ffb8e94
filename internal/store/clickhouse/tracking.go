package clickhouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
)

// TrackingStore implements store.TrackingStore for ClickHouse. Delivery
// records are append-only audit rows, so a columnar store fits.
type TrackingStore struct {
	client *Client
	log    *zap.Logger
}

// NewTrackingStore creates a ClickHouse-backed tracking store
func NewTrackingStore(client *Client, log *zap.Logger) *TrackingStore {
	return &TrackingStore{
		client: client,
		log:    log,
	}
}

// InitSchema initializes the delivery_records table
func (s *TrackingStore) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS delivery_records (
		id String,
		notification_id String,
		user_id String,
		event_type LowCardinality(String),
		channel LowCardinality(String),
		status LowCardinality(String),
		error_kind LowCardinality(String),
		detail String,
		created_at DateTime64(3) DEFAULT now64(3)
	) ENGINE = MergeTree
	PRIMARY KEY (user_id, created_at)
	ORDER BY (user_id, created_at, id)
	PARTITION BY toYYYYMM(created_at)
	SETTINGS index_granularity = 8192
	`

	if err := s.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create delivery_records table: %w", err)
	}

	s.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// Record appends delivery records
func (s *TrackingStore) Record(ctx context.Context, records []*domain.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.client.Conn().PrepareBatch(ctx, "INSERT INTO delivery_records")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, record := range records {
		err := batch.Append(
			record.ID,
			record.NotificationID,
			record.UserID,
			record.EventType,
			record.Channel,
			record.Status,
			record.ErrorKind,
			record.Detail,
			record.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append delivery record to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

// ListByUser returns a user's most recent delivery records
func (s *TrackingStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.DeliveryRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.client.Conn().Query(ctx, `
		SELECT id, notification_id, user_id, event_type, channel, status, error_kind, detail, created_at
		FROM delivery_records
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Error("Failed to close delivery record rows", zap.Error(err))
		}
	}()

	var records []*domain.DeliveryRecord
	for rows.Next() {
		var record domain.DeliveryRecord
		err := rows.Scan(&record.ID, &record.NotificationID, &record.UserID, &record.EventType,
			&record.Channel, &record.Status, &record.ErrorKind, &record.Detail, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery record row: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery record rows: %w", err)
	}
	return records, nil
}

// Ping checks if the ClickHouse connection is alive
func (s *TrackingStore) Ping(ctx context.Context) error {
	return s.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (s *TrackingStore) Close() error {
	return s.client.Close()
}
