package service

import (
	"context"

	"github.com/selvester69/notifications/internal/dto"
)

// NotificationServicer defines the interface for notification service operations
type NotificationServicer interface {
	TriggerNotification(ctx context.Context, req *dto.TriggerNotificationRequest) (string, error)
	ListDeliveries(ctx context.Context, userID string, limit int) ([]dto.DeliveryRecordResponse, error)
}
