package domain

import "time"

// Template is a named, per-channel notification template. Subject and
// body may contain {{placeholder}} tokens substituted at render time.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Channel   Channel   `json:"channel"`
	Language  string    `json:"language"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
