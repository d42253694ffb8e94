package domain

// Event is an incoming domain event to be fanned out as notifications
type Event struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id"`
	Data      map[string]string `json:"data"`
}

// Category is the preference bucket an event is classified into
type Category string

const (
	CategoryOrder     Category = "ORDER"
	CategoryUserEvent Category = "USER_EVENT"
	CategoryMarketing Category = "MARKETING"
)
