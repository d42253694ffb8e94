package domain

import "time"

// DeliveryRecord is one tracked dispatch attempt, stored append-only
type DeliveryRecord struct {
	ID             string    `ch:"id"`
	NotificationID string    `ch:"notification_id"`
	UserID         string    `ch:"user_id"`
	EventType      string    `ch:"event_type"`
	Channel        string    `ch:"channel"`
	Status         string    `ch:"status"`
	ErrorKind      string    `ch:"error_kind"`
	Detail         string    `ch:"detail"`
	CreatedAt      time.Time `ch:"created_at"`
}

// Delivery statuses recorded for a DeliveryRecord
const (
	DeliveryStatusSent   = "SENT"
	DeliveryStatusFailed = "FAILED"
)
