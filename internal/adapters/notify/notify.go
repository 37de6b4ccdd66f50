// Package notify delivers monitor events to logs, an in memory feed and Redis Pub/Sub
package notify

import (
	"context"

	"contestwatch/internal/platform/logger"
	"contestwatch/internal/services/contest/domain"
)

// Fanout delivers every event to each sink in order
type Fanout []domain.Notifier

// Notify implements domain.Notifier
func (f Fanout) Notify(ctx context.Context, ev domain.Event) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

// Log writes one structured line per event
type Log struct {
	log logger.Logger
}

// NewLog builds a Log notifier on the "notify" component logger
func NewLog() *Log { return &Log{log: *logger.Named("notify")} }

// Notify implements domain.Notifier
func (l *Log) Notify(_ context.Context, ev domain.Event) {
	evt := l.log.Info()
	switch ev.Kind {
	case domain.EventFetchFailed, domain.EventValidationFailed:
		evt = l.log.Warn()
	}
	evt.Str("kind", string(ev.Kind)).
		Str("session_id", ev.SessionID).
		Str("title", ev.Title).
		Str("description", ev.Description).
		Msg("contest event")
}
