package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"contestwatch/internal/platform/config"
	"contestwatch/internal/platform/logger"
	"contestwatch/internal/platform/metrics"
	phttp "contestwatch/internal/platform/net/http"

	"contestwatch/internal/services/api"
)

func main() {
	// .env first so config and the logger see it
	if err := config.LoadDotenv(".env"); err != nil {
		logger.Get().Panic().Err(err).Msg("failed to load .env")
	}

	root := config.New()
	apiCfg := root.Prefix("CONTEST_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// http server (reads CONTEST_API_PORT)
	srv := phttp.NewServer(apiCfg.MayAddr("API_PORT", ":4000"))

	contest, err := api.Mount(ctx, srv.Router(), api.Options{
		Config:         root,
		Logger:         l,
		Metrics:        metrics.New(),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		CORSOrigins:    apiCfg.MayCSV("CORS_ORIGINS", nil),
	})
	if err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}
	defer func() {
		if err := contest.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close contest module")
		}
	}()

	// run until SIGINT/SIGTERM
	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
