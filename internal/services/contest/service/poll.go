package service

import (
	"context"

	"contestwatch/internal/core/match"
	"contestwatch/internal/platform/metrics"
	"contestwatch/internal/services/contest/domain"
)

// loop polls on every tick until the session ends. Ticks that arrive while a
// poll is running are dropped by the ticker, so polls never overlap
func (s *Svc) loop(ctx context.Context, sess *session, t Ticker) {
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !s.pollOnce(ctx, sess) {
				return
			}
		}
	}
}

// pollOnce runs one fetch and evaluate pass for sess and reports whether the
// session is still monitoring afterwards. The fetch runs without the lock;
// its result is applied only if sess is still the running session
func (s *Svc) pollOnce(ctx context.Context, sess *session) bool {
	s.mu.Lock()
	if s.cur != sess || s.state != domain.StateMonitoring {
		s.mu.Unlock()
		return false
	}
	if sess.polling {
		s.mu.Unlock()
		return true
	}
	sess.polling = true
	req := domain.FetchRequest{
		VideoID:    sess.cfg.VideoID,
		APIKey:     sess.cfg.APIKey,
		MaxResults: s.config.MaxResults,
	}
	secret := sess.cfg.SecretWord
	word := sess.word
	s.mu.Unlock()

	start := s.now()
	comments, err := s.fetcher.FetchComments(ctx, req)
	took := s.now().Sub(start)

	s.mu.Lock()
	sess.polling = false
	if s.cur != sess || s.state != domain.StateMonitoring {
		s.mu.Unlock()
		sess.log.Debug().Err(err).Msg("poll result discarded, session ended")
		s.metrics.RecordPoll(metrics.PollDiscarded, 0, took)
		return false
	}
	sess.polls++

	if err != nil {
		sess.lastErr = err.Error()
		s.endLocked(sess, domain.StateStopped)
		s.mu.Unlock()

		sess.log.Error().Err(err).Int("poll", sess.polls).Msg("fetch comments failed, monitoring stopped")
		s.metrics.RecordPoll(metrics.PollFailed, 0, took)
		s.emit(ctx, domain.Event{
			Kind:        domain.EventFetchFailed,
			Title:       titleFetchFailed,
			Description: descFetchFailed,
			SessionID:   sess.id,
			At:          sess.ended,
		})
		s.emit(ctx, stoppedEvent(sess))
		return false
	}

	evaluated := 0
	for _, c := range comments {
		if _, ok := sess.seen[c.ID]; ok {
			continue
		}
		sess.seen[c.ID] = struct{}{}
		evaluated++
		if !match.Matches(c.TextDisplay, secret) {
			continue
		}

		w := domain.Winner{
			Username:  c.AuthorDisplayName,
			Word:      word,
			CommentID: c.ID,
			FoundAt:   s.now(),
		}
		s.winner = &w
		s.endLocked(sess, domain.StateWinnerFound)
		s.mu.Unlock()

		sess.log.Info().Str("username", w.Username).Str("comment_id", w.CommentID).Int("poll", sess.polls).Msg("winner found")
		s.metrics.RecordPoll(metrics.PollWinner, evaluated, took)
		s.emit(ctx, winnerEvent(sess, w))
		return false
	}
	seen := len(sess.seen)
	s.mu.Unlock()

	sess.log.Debug().Int("fetched", len(comments)).Int("evaluated", evaluated).Int("seen", seen).Dur("took", took).Msg("poll done")
	s.metrics.RecordPoll(metrics.PollOK, evaluated, took)
	return true
}
