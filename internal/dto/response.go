package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TriggerNotificationResponse represents an accepted trigger request
type TriggerNotificationResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// TemplateResponse represents a stored template
type TemplateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Channel   string    `json:"channel"`
	Language  string    `json:"language"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferenceResponse represents a stored preference
type PreferenceResponse struct {
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	Channel   string    `json:"channel"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveryRecordResponse represents one tracked dispatch attempt
type DeliveryRecordResponse struct {
	NotificationID string    `json:"notification_id"`
	EventType      string    `json:"event_type"`
	Channel        string    `json:"channel"`
	Status         string    `json:"status"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
