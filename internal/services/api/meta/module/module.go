// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	"contestwatch/internal/modkit"
	"contestwatch/internal/modkit/httpkit"
	str "contestwatch/internal/platform/strings"

	metahttp "contestwatch/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	register func(httpkit.Router)

	startedAt time.Time
}

// New constructs a meta module. service names the binary in /version and /service,
// checks are the readiness dependencies (see metahttp.Deps)
func New(deps modkit.Deps, service string, checks map[string]any, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: str.FirstNonBlank(service, "contestwatch-api"),
			StartedAt:   m.startedAt,
			Checks:      checks,
		})
		external(r)
	}

	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, m.register)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.FirstNonBlank(m.name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
