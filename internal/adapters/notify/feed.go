package notify

import (
	"context"
	"sync"

	"contestwatch/internal/services/contest/domain"
)

// DefaultFeedSize is used when NewFeed is given a non positive size
const DefaultFeedSize = 50

// Feed keeps the last N events in a ring for the HTTP API
type Feed struct {
	mu   sync.RWMutex
	buf  []domain.Event
	next int
	full bool
}

// NewFeed returns a feed holding at most size events
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{buf: make([]domain.Event, size)}
}

// Notify implements domain.Notifier
func (f *Feed) Notify(_ context.Context, ev domain.Event) {
	f.mu.Lock()
	f.buf[f.next] = ev
	f.next = (f.next + 1) % len(f.buf)
	if f.next == 0 {
		f.full = true
	}
	f.mu.Unlock()
}

// Recent returns up to limit events newest first; limit <= 0 means all held
func (f *Feed) Recent(limit int) []domain.Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := f.next
	if f.full {
		n = len(f.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.buf)) % len(f.buf)
		out = append(out, f.buf[idx])
	}
	return out
}

var _ domain.EventFeedPort = (*Feed)(nil)
