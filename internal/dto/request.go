package dto

// TriggerNotificationRequest represents a notification trigger request
type TriggerNotificationRequest struct {
	EventType string            `json:"event_type" binding:"required"`
	UserID    string            `json:"user_id" binding:"required"`
	Data      map[string]string `json:"data"`
}

// CreateTemplateRequest represents a template create/update request
type CreateTemplateRequest struct {
	Name     string `json:"name" binding:"required"`
	Channel  string `json:"channel" binding:"required"`
	Language string `json:"language" binding:"required"`
	Subject  string `json:"subject"`
	Body     string `json:"body" binding:"required"`
	Active   *bool  `json:"active"`
}

// SetPreferenceRequest represents a preference upsert request
type SetPreferenceRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Category string `json:"category" binding:"required"`
	Channel  string `json:"channel" binding:"required"`
	Enabled  bool   `json:"enabled"`
}

// BulkPreferencesRequest represents a bulk preference upsert request
type BulkPreferencesRequest struct {
	Preferences []SetPreferenceRequest `json:"preferences" binding:"required,min=1,max=500,dive"`
}
