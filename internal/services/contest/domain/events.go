package domain

import "time"

// EventKind names a notification
type EventKind string

const (
	// EventStarted fires when a session begins
	EventStarted EventKind = "started"

	// EventValidationFailed fires when Start is refused for a missing field
	EventValidationFailed EventKind = "validation_failed"

	// EventFetchFailed fires when a poll cannot reach the comment source
	EventFetchFailed EventKind = "fetch_failed"

	// EventWinnerFound fires once per session when a comment matches
	EventWinnerFound EventKind = "winner_found"

	// EventStopped fires on a user stop of a running session
	EventStopped EventKind = "stopped"
)

// Event is an advisory notification for presentation layers
type Event struct {
	Kind        EventKind `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SessionID   string    `json:"session_id,omitempty"`
	At          time.Time `json:"at"`
}
