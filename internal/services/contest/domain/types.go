// Package domain holds contest monitoring types and ports independent of transport
package domain

import (
	"strings"
	"time"

	perr "contestwatch/internal/platform/errors"
)

// State is the monitor lifecycle state
type State string

const (
	// StateIdle means no session has started yet
	StateIdle State = "idle"

	// StateMonitoring means a session is polling
	StateMonitoring State = "monitoring"

	// StateStopped means the session ended without a winner
	StateStopped State = "stopped"

	// StateWinnerFound is terminal for a session
	StateWinnerFound State = "winner_found"
)

// States lists every state in display order
var States = []State{StateIdle, StateMonitoring, StateStopped, StateWinnerFound}

// Label is the human facing status line
func (s State) Label() string {
	switch s {
	case StateMonitoring:
		return "Monitoring..."
	case StateStopped:
		return "Stopped"
	case StateWinnerFound:
		return "Winner Found!"
	default:
		return "Idle"
	}
}

// Config is what a session needs to run
type Config struct {
	SecretWord string `json:"secret_word"`
	APIKey     string `json:"api_key"`
	VideoID    string `json:"video_id"`
}

// Field names carried on validation errors
const (
	FieldSecretWord = "secret_word"
	FieldAPIKey     = "api_key"
	FieldVideoID    = "video_id"
)

// Validate reports the first missing field in the order secret word, API key, video id
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.SecretWord) == "":
		return perr.Validationf(FieldSecretWord, "Please enter a secret word first.")
	case strings.TrimSpace(c.APIKey) == "":
		return perr.Validationf(FieldAPIKey, "Please enter your YouTube API key.")
	case strings.TrimSpace(c.VideoID) == "":
		return perr.Validationf(FieldVideoID, "Please enter a YouTube video ID.")
	}
	return nil
}

// Trimmed returns c with surrounding whitespace removed from every field
func (c Config) Trimmed() Config {
	return Config{
		SecretWord: strings.TrimSpace(c.SecretWord),
		APIKey:     strings.TrimSpace(c.APIKey),
		VideoID:    strings.TrimSpace(c.VideoID),
	}
}

// MissingTitle maps a validation field to its notification title
func MissingTitle(field string) string {
	switch field {
	case FieldSecretWord:
		return "Missing Secret Word"
	case FieldAPIKey:
		return "Missing API Key"
	case FieldVideoID:
		return "Missing Video ID"
	default:
		return "Invalid Configuration"
	}
}

// Comment is one top level comment as delivered by the comment source
type Comment struct {
	ID                string `json:"id"`
	AuthorDisplayName string `json:"author_display_name"`
	TextDisplay       string `json:"text_display"`
}

// Winner is the first commenter whose comment matched. Word is the configured secret
type Winner struct {
	Username  string    `json:"username"`
	Word      string    `json:"word"`
	CommentID string    `json:"comment_id"`
	FoundAt   time.Time `json:"found_at"`
}

// Snapshot is a read only view of the monitor
type Snapshot struct {
	State        State      `json:"state"`
	Label        string     `json:"label"`
	Winner       *Winner    `json:"winner,omitempty"`
	SessionID    string     `json:"session_id,omitempty"`
	VideoID      string     `json:"video_id,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Polls        int        `json:"polls"`
	CommentsSeen int        `json:"comments_seen"`
	LastError    string     `json:"last_error,omitempty"`
}
