package consumer

import (
	"encoding/json"
	"fmt"

	"github.com/selvester69/notifications/internal/domain"
)

// JSONEventParser implements MessageParser for JSON-formatted event messages
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse parses a JSON message body into an Event
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var event domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	if event.EventType == "" {
		return nil, fmt.Errorf("message is missing event_type")
	}
	if event.UserID == "" {
		return nil, fmt.Errorf("message is missing user_id")
	}

	if event.Data == nil {
		event.Data = map[string]string{}
	}

	return &event, nil
}
