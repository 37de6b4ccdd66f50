// Package api provides the HTTP API for the application
package api

import (
	"context"

	"contestwatch/internal/platform/config"
	"contestwatch/internal/platform/logger"
	"contestwatch/internal/platform/metrics"
	phttp "contestwatch/internal/platform/net/http"
	"contestwatch/internal/platform/net/middleware"

	"contestwatch/internal/modkit"
	"contestwatch/internal/modkit/httpkit"
	"contestwatch/internal/modkit/module"

	metamod "contestwatch/internal/services/api/meta/module"
	contestmod "contestwatch/internal/services/contest/module"
)

// ServiceName identifies the API binary in logs and meta endpoints
const ServiceName = "contestwatch-api"

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	EnableProfiler bool
	CORSOrigins    []string

	// Contest overrides the CONTEST_* module options, mainly for tests
	Contest contestmod.Options
}

// Mount mounts the API service onto the given router. The returned contest
// module owns the monitor; callers Close it on shutdown
func Mount(ctx context.Context, r phttp.Router, opt Options) (*contestmod.Module, error) {
	deps := modkit.Deps{
		Cfg:     opt.Config,
		Metrics: opt.Metrics,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	contest, err := contestmod.New(ctx, deps, opt.Contest)
	if err != nil {
		return nil, err
	}

	mods := []module.Module{
		metamod.New(deps, ServiceName, contest.Checks()),
		contest,
	}

	// root middleware must be registered before any route
	r.Use(middleware.Heartbeat("/health"))
	// the metrics middleware sits on the root so route patterns are resolved
	if opt.Metrics != nil {
		r.Use(opt.Metrics.Middleware())
		r.Handle("/metrics", opt.Metrics.Handler())
	}
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned API with a common middleware stack
	stack := httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: opt.CORSOrigins,
		HealthPath:  "/api/v1/health",
	})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return contest, nil
}
