package domain

import "time"

// Event types broadcast to WebSocket clients
const (
	EventRefreshStarted   = "refresh_started"
	EventRefreshCompleted = "refresh_completed"
	EventRefreshFailed    = "refresh_failed"
)

// Event is a message broadcast to WebSocket clients
type Event struct {
	Type      string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// RefreshResult is the payload of a refresh_completed event
type RefreshResult struct {
	NewMatches   int    `json:"new_matches"`
	TotalMatches int    `json:"total_matches"`
	LastUpdate   string `json:"last_update"`
}
