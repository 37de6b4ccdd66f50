package domain

import "context"

// FetchRequest is a single page request to the comment source
type FetchRequest struct {
	VideoID    string
	APIKey     string
	MaxResults int
}

// CommentFetcher returns up to MaxResults of the most recent top level comments.
// A response without items yields no comments and no error
type CommentFetcher interface {
	FetchComments(ctx context.Context, req FetchRequest) ([]Comment, error)
}

// Notifier receives advisory events; delivery failures never affect monitor state
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// MonitorPort is what transports drive
type MonitorPort interface {
	SetSecretWord(word string) error
	SetAPIKey(key string) error
	SetVideoID(id string) error
	Config() Config

	Start(ctx context.Context) error
	StartWith(ctx context.Context, cfg Config) error
	Stop()

	Snapshot() Snapshot
	Winner() (Winner, bool)
}

// EventFeedPort exposes recently emitted events newest first
type EventFeedPort interface {
	Recent(limit int) []Event
}

// WaitPort lets a caller block until the running session ends
type WaitPort interface {
	Wait(ctx context.Context) (Snapshot, error)
}
