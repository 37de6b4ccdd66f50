// Package service runs the comment monitor: one session at a time, polling the
// comment source on a ticker until a winner is found or the session is stopped
package service

import (
	"context"
	"sync"
	"time"

	"contestwatch/internal/modkit"
	"contestwatch/internal/platform/logger"
	"contestwatch/internal/platform/metrics"
	"contestwatch/internal/services/contest/domain"

	"github.com/google/uuid"
)

const (
	// DefaultInterval is the fixed period between polls
	DefaultInterval = 10 * time.Second

	// DefaultMaxResults is the page size asked of the comment source
	DefaultMaxResults = 100
)

// Config carries runtime knobs for the monitor
type Config struct {
	Interval   time.Duration
	MaxResults int
}

// Ticker is the part of time.Ticker the poll loop needs
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker { return stdTicker{time.NewTicker(d)} }

// session is everything that belongs to one Start. Identity of the pointer is
// the session generation: work captured for an older session is discarded
type session struct {
	id      string
	cfg     domain.Config
	word    string // secret word as configured, reported on the winner
	seen    map[string]struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	log     logger.Logger
	started time.Time
	ended   time.Time
	polls   int
	polling bool
	lastErr string
}

// Svc implements domain.MonitorPort
type Svc struct {
	fetcher  domain.CommentFetcher
	notifier domain.Notifier
	metrics  *metrics.Metrics
	log      logger.Logger
	config   Config

	now       func() time.Time
	newTicker func(time.Duration) Ticker
	newID     func() string

	mu     sync.Mutex
	draft  domain.Config
	state  domain.State
	winner *domain.Winner
	cur    *session
}

var (
	_ domain.MonitorPort = (*Svc)(nil)
	_ domain.WaitPort    = (*Svc)(nil)
)

// New constructs a monitor in the Idle state
func New(deps modkit.Deps, fetcher domain.CommentFetcher, notifier domain.Notifier, cfg Config) *Svc {
	if fetcher == nil {
		panic("contest.Service requires a non nil CommentFetcher")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxResults <= 0 || cfg.MaxResults > DefaultMaxResults {
		cfg.MaxResults = DefaultMaxResults
	}
	s := &Svc{
		fetcher:   fetcher,
		notifier:  notifier,
		metrics:   deps.Metrics,
		log:       *logger.Named("contest"),
		config:    cfg,
		now:       time.Now,
		newTicker: newStdTicker,
		newID:     uuid.NewString,
		state:     domain.StateIdle,
	}
	s.metrics.SetState(string(s.state), stateNames()...)
	return s
}

func stateNames() []string {
	out := make([]string, len(domain.States))
	for i, st := range domain.States {
		out[i] = string(st)
	}
	return out
}

// Interval reports the configured poll period
func (s *Svc) Interval() time.Duration { return s.config.Interval }

// SetSecretWord updates the draft config; refused while monitoring
func (s *Svc) SetSecretWord(word string) error {
	return s.setDraft(func(c *domain.Config) { c.SecretWord = word })
}

// SetAPIKey updates the draft config; refused while monitoring
func (s *Svc) SetAPIKey(key string) error {
	return s.setDraft(func(c *domain.Config) { c.APIKey = key })
}

// SetVideoID updates the draft config; refused while monitoring
func (s *Svc) SetVideoID(id string) error {
	return s.setDraft(func(c *domain.Config) { c.VideoID = id })
}

// Config returns the draft config the next Start will use
func (s *Svc) Config() domain.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Snapshot returns a read only view of the monitor
func (s *Svc) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Winner returns the winner of the latest session, if any
func (s *Svc) Winner() (domain.Winner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.winner == nil {
		return domain.Winner{}, false
	}
	return *s.winner, true
}

// Wait blocks until the current session ends or ctx is done, then returns the latest snapshot
func (s *Svc) Wait(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	sess := s.cur
	s.mu.Unlock()
	if sess == nil {
		return s.Snapshot(), nil
	}
	select {
	case <-sess.done:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

func (s *Svc) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		State: s.state,
		Label: s.state.Label(),
	}
	if s.winner != nil {
		w := *s.winner
		snap.Winner = &w
	}
	if sess := s.cur; sess != nil {
		started := sess.started
		snap.SessionID = sess.id
		snap.VideoID = sess.cfg.VideoID
		snap.StartedAt = &started
		if !sess.ended.IsZero() {
			ended := sess.ended
			snap.EndedAt = &ended
		}
		snap.Polls = sess.polls
		snap.CommentsSeen = len(sess.seen)
		snap.LastError = sess.lastErr
	}
	return snap
}
