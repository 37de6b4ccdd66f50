// Package youtube provides a minimal YouTube Data API v3 client for comment polling
package youtube

import (
	"context"
	"net/http"
	"net/url"
	"time"

	perr "contestwatch/internal/platform/errors"
	"contestwatch/internal/platform/logger"
	"contestwatch/internal/platform/metrics"
)

const (
	baseURLDefault = "https://www.googleapis.com"
	defaultTimeout = 10 * time.Second
	defaultUA      = "contestwatch"
	// 100 comments of up to 10k runes, twice (textDisplay and textOriginal), plus markup
	defaultMaxBody = 16 << 20
	apiName        = "youtube"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// MaxBodyBytes caps a response body; a larger body is an error, never truncated
	MaxBodyBytes int64

	// Metrics is optional; nil records nothing
	Metrics *metrics.Metrics
}

// Client issues single shot GET requests. It never retries: a failed poll is
// reported to the caller which decides what to do
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBody
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("youtube"),
		now:  time.Now,
	}
}

// Do performs a GET on path with q. Non 2xx responses come back as an
// Unavailable error wrapping a StatusError; the body is closed for them.
// The query carries the API key so only the path is ever logged
func (c *Client) Do(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "youtube new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)

	if err != nil {
		c.opts.Metrics.RecordAPICall(apiName, 0, lat)
		if ctx.Err() != nil {
			return nil, perr.Wrapf(ctx.Err(), perr.ErrorCodeUnavailable, "youtube request cancelled")
		}
		// url.Error embeds the full URL, key included
		return nil, perr.Wrapf(redact(err), perr.ErrorCodeUnavailable, "youtube request failed")
	}
	c.opts.Metrics.RecordAPICall(apiName, resp.StatusCode, lat)

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("youtube http response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := newStatusError(resp)
		return nil, perr.Wrapf(se, perr.ErrorCodeUnavailable, "youtube returned status %d", se.Status)
	}
	return resp, nil
}
