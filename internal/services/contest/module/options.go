package module

import (
	"time"

	"contestwatch/internal/adapters/notify"
	"contestwatch/internal/platform/config"
	"contestwatch/internal/services/contest/domain"
	"contestwatch/internal/services/contest/service"
)

// Options controls the contest module. Values are read from CONTEST_* env
type Options struct {
	Interval   time.Duration
	MaxResults int

	// comment source
	YTBaseURL string
	YTTimeout time.Duration

	// notifications
	FeedSize     int
	RedisURL     string
	RedisChannel string

	// Fetcher replaces the YouTube client, mainly for tests
	Fetcher domain.CommentFetcher
	// Notifiers are appended to the built in log, feed and redis sinks
	Notifiers []domain.Notifier
}

// FromConfig reads options using the CONTEST_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CONTEST_")
	return Options{
		Interval:     c.MayDuration("POLL_INTERVAL", service.DefaultInterval),
		MaxResults:   c.MayInt("MAX_RESULTS", service.DefaultMaxResults),
		YTBaseURL:    c.MayString("YT_BASE_URL", ""),
		YTTimeout:    c.MayDuration("YT_TIMEOUT", 10*time.Second),
		FeedSize:     c.MayInt("FEED_SIZE", notify.DefaultFeedSize),
		RedisURL:     c.MayString("REDIS_URL", ""),
		RedisChannel: c.MayString("REDIS_CHANNEL", notify.DefaultChannel),
	}
}

// merge applies non zero overrides onto o
func (o Options) merge(over Options) Options {
	if over.Interval > 0 {
		o.Interval = over.Interval
	}
	if over.MaxResults > 0 {
		o.MaxResults = over.MaxResults
	}
	if over.YTBaseURL != "" {
		o.YTBaseURL = over.YTBaseURL
	}
	if over.YTTimeout > 0 {
		o.YTTimeout = over.YTTimeout
	}
	if over.FeedSize > 0 {
		o.FeedSize = over.FeedSize
	}
	if over.RedisURL != "" {
		o.RedisURL = over.RedisURL
	}
	if over.RedisChannel != "" {
		o.RedisChannel = over.RedisChannel
	}
	if over.Fetcher != nil {
		o.Fetcher = over.Fetcher
	}
	o.Notifiers = append(o.Notifiers, over.Notifiers...)
	return o
}
