package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
	"github.com/selvester69/notifications/internal/dto"
	"github.com/selvester69/notifications/internal/queue"
	"github.com/selvester69/notifications/internal/store"
)

// NotificationService accepts trigger requests and hands them to the
// inbound transport; the worker picks them up from there
type NotificationService struct {
	publisher queue.QueuePublisher
	tracking  store.TrackingStore
	log       *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(publisher queue.QueuePublisher, tracking store.TrackingStore, log *zap.Logger) *NotificationService {
	return &NotificationService{
		publisher: publisher,
		tracking:  tracking,
		log:       log,
	}
}

// computeEventID generates a deterministic event ID based on event
// content, so the same trigger enqueued twice carries the same ID
func computeEventID(req *dto.TriggerNotificationRequest) string {
	keys := make([]string, 0, len(req.Data))
	for key := range req.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(req.EventType)
	payload.WriteString("|")
	payload.WriteString(req.UserID)
	for _, key := range keys {
		payload.WriteString("|")
		payload.WriteString(key)
		payload.WriteString("=")
		payload.WriteString(req.Data[key])
	}

	hash := sha256.Sum256([]byte(payload.String()))
	return hex.EncodeToString(hash[:])
}

// TriggerNotification validates a trigger request and publishes the
// event to the queue
func (s *NotificationService) TriggerNotification(ctx context.Context, req *dto.TriggerNotificationRequest) (string, error) {
	eventID := computeEventID(req)

	event := &domain.Event{
		EventID:   eventID,
		EventType: req.EventType,
		UserID:    req.UserID,
		Data:      req.Data,
	}
	if event.Data == nil {
		event.Data = map[string]string{}
	}

	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		return "", fmt.Errorf("failed to publish event to queue: %w", err)
	}

	return eventID, nil
}

// ListDeliveries returns a user's recent delivery records
func (s *NotificationService) ListDeliveries(ctx context.Context, userID string, limit int) ([]dto.DeliveryRecordResponse, error) {
	records, err := s.tracking.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	responses := make([]dto.DeliveryRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.DeliveryRecordResponse{
			NotificationID: record.NotificationID,
			EventType:      record.EventType,
			Channel:        record.Channel,
			Status:         record.Status,
			ErrorKind:      record.ErrorKind,
			Detail:         record.Detail,
			CreatedAt:      record.CreatedAt,
		})
	}

	return responses, nil
}
