// Package module wires the contest monitor, its adapters and its routes
package module

import (
	"context"
	"net/http"

	"contestwatch/internal/adapters/ingest/youtube"
	"contestwatch/internal/adapters/notify"
	"contestwatch/internal/modkit"
	"contestwatch/internal/modkit/httpkit"
	pstrings "contestwatch/internal/platform/strings"
	"contestwatch/internal/services/contest/domain"
	contesthttp "contestwatch/internal/services/contest/http"
	"contestwatch/internal/services/contest/service"
)

// Module implements modkit.Module for the contest service
type Module struct {
	deps     modkit.Deps
	name     string
	prefix   string
	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)

	svc   *service.Svc
	ports Ports
	redis *notify.Redis
}

var _ modkit.Module = (*Module)(nil)

// New builds the module. Options come from CONTEST_* config with overrides
// applied on top; a configured Redis URL must be reachable
func New(ctx context.Context, deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	o := FromConfig(deps.Cfg).merge(overrides)
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("contest"),
		modkit.WithPrefix("/contest"),
	}, opts...)...)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
	}

	feed := notify.NewFeed(o.FeedSize)
	sinks := notify.Fanout{notify.NewLog(), feed}
	if o.RedisURL != "" {
		r, err := notify.DialRedis(ctx, o.RedisURL, o.RedisChannel)
		if err != nil {
			return nil, err
		}
		m.redis = r
		sinks = append(sinks, r)
	}
	sinks = append(sinks, o.Notifiers...)

	fetcher := o.Fetcher
	if fetcher == nil {
		fetcher = youtube.NewClient(youtube.Options{
			BaseURL: o.YTBaseURL,
			Timeout: o.YTTimeout,
			Metrics: deps.Metrics,
		})
	}

	m.svc = service.New(deps, fetcher, sinks, service.Config{
		Interval:   o.Interval,
		MaxResults: o.MaxResults,
	})
	m.ports = Ports{Monitor: m.svc, Feed: feed, Waiter: m.svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		contesthttp.Register(r, contesthttp.Deps{Monitor: m.svc, Feed: feed})
		external(r)
	}
	return m, nil
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Prefix is the mount path under the API root
func (m *Module) Prefix() string { return pstrings.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }

// Monitor is a typed shortcut for Ports().Monitor
func (m *Module) Monitor() domain.MonitorPort { return m.ports.Monitor }

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, m.register)
}

// Checks lists the dependencies a readiness probe should ping, nil when not configured
func (m *Module) Checks() map[string]any {
	if m.redis == nil {
		return map[string]any{"redis": nil}
	}
	return map[string]any{"redis": m.redis}
}

// Close stops the running session and releases the redis client
func (m *Module) Close() error {
	m.svc.Stop()
	if m.redis != nil {
		return m.redis.Close()
	}
	return nil
}
