package service

import (
	"context"
	"fmt"

	perr "contestwatch/internal/platform/errors"
	"contestwatch/internal/services/contest/domain"
)

// Notification copy shown by presentation layers
const (
	titleStarted     = "Monitoring Started"
	descStarted      = "Now checking for the secret word in comments..."
	titleStopped     = "Monitoring Stopped"
	descStopped      = "Comment monitoring has been stopped."
	titleFetchFailed = "Error"
	descFetchFailed  = "Failed to check comments. Please verify your API key and video ID."
	titleWinner      = "🎉 Winner Found!"
	descWinnerFormat = "%s guessed the secret word!"
)

func (s *Svc) setDraft(fn func(*domain.Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateMonitoring {
		return perr.Conflictf("configuration cannot change while monitoring")
	}
	fn(&s.draft)
	return nil
}

// StartWith starts a session with cfg and keeps it as the draft once it
// validates. Like the setters it is refused while monitoring
func (s *Svc) StartWith(ctx context.Context, cfg domain.Config) error {
	s.mu.Lock()
	if s.state == domain.StateMonitoring {
		s.mu.Unlock()
		return perr.Conflictf("monitoring is already running, stop it first")
	}
	return s.beginLocked(ctx, cfg)
}

// Start validates the draft config and begins a fresh session: empty seen set,
// no winner, one poll right away, then one poll per interval.
// It is refused while monitoring. ctx only scopes the call; the session
// outlives it until Stop or a terminal poll
func (s *Svc) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == domain.StateMonitoring {
		s.mu.Unlock()
		return perr.Conflictf("monitoring is already running, stop it first")
	}
	return s.beginLocked(ctx, s.draft)
}

// beginLocked is entered with s.mu held and a monitor that is not running.
// It releases the lock before the first poll
func (s *Svc) beginLocked(ctx context.Context, raw domain.Config) error {
	cfg := raw.Trimmed()
	if err := cfg.Validate(); err != nil {
		s.mu.Unlock()
		s.log.Warn().Str("field", perr.FieldOf(err)).Msg("start refused")
		s.emit(ctx, domain.Event{
			Kind:        domain.EventValidationFailed,
			Title:       domain.MissingTitle(perr.FieldOf(err)),
			Description: perr.WireFrom(err).Message,
			At:          s.now(),
		})
		return err
	}
	s.draft = raw

	sctx, cancel := context.WithCancel(context.Background())
	id := s.newID()
	sess := &session{
		id:      id,
		cfg:     cfg,
		word:    raw.SecretWord,
		seen:    make(map[string]struct{}),
		cancel:  cancel,
		done:    make(chan struct{}),
		log:     s.log.With().Str("session_id", id).Str("video_id", cfg.VideoID).Logger(),
		started: s.now(),
	}
	s.cur = sess
	s.winner = nil
	s.state = domain.StateMonitoring
	s.metrics.SetState(string(domain.StateMonitoring), stateNames()...)
	s.mu.Unlock()

	s.metrics.SessionStarted()
	sess.log.Info().Dur("interval", s.config.Interval).Msg("monitoring started")
	s.emit(ctx, domain.Event{
		Kind:        domain.EventStarted,
		Title:       titleStarted,
		Description: descStarted,
		SessionID:   id,
		At:          sess.started,
	})

	if !s.pollOnce(sctx, sess) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == sess && s.state == domain.StateMonitoring {
		go s.loop(sctx, sess, s.newTicker(s.config.Interval))
	}
	return nil
}

// Stop ends a running session. In any other state it does nothing, so a
// found winner stays on display
func (s *Svc) Stop() {
	s.mu.Lock()
	sess := s.cur
	if sess == nil || s.state != domain.StateMonitoring {
		s.mu.Unlock()
		return
	}
	s.endLocked(sess, domain.StateStopped)
	s.mu.Unlock()

	sess.log.Info().Int("polls", sess.polls).Msg("monitoring stopped")
	s.emit(context.Background(), stoppedEvent(sess))
}

// endLocked moves sess to a terminal state and releases its ticker and fetch.
// Callers hold s.mu and guarantee sess is the running session
func (s *Svc) endLocked(sess *session, st domain.State) {
	s.state = st
	s.metrics.SetState(string(st), stateNames()...)
	sess.ended = s.now()
	sess.cancel()
	close(sess.done)
}

func stoppedEvent(sess *session) domain.Event {
	return domain.Event{
		Kind:        domain.EventStopped,
		Title:       titleStopped,
		Description: descStopped,
		SessionID:   sess.id,
		At:          sess.ended,
	}
}

func winnerEvent(sess *session, w domain.Winner) domain.Event {
	return domain.Event{
		Kind:        domain.EventWinnerFound,
		Title:       titleWinner,
		Description: fmt.Sprintf(descWinnerFormat, w.Username),
		SessionID:   sess.id,
		At:          w.FoundAt,
	}
}

// emit hands ev to the notifier detached from ctx cancellation, since terminal
// events are sent right after the session context is cancelled.
// A panicking sink is logged and ignored
func (s *Svc) emit(ctx context.Context, ev domain.Event) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("kind", string(ev.Kind)).Msg("notifier panicked")
		}
	}()
	s.notifier.Notify(context.WithoutCancel(ctx), ev)
}
