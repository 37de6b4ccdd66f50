package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contestwatch/internal/adapters/preset"
	"contestwatch/internal/modkit"
	"contestwatch/internal/platform/config"
	perr "contestwatch/internal/platform/errors"
	"contestwatch/internal/platform/logger"
	"contestwatch/internal/services/contest/domain"
	contestmod "contestwatch/internal/services/contest/module"
)

// exit codes
const (
	exitWinner      = 0
	exitFailed      = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	if err := config.LoadDotenv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(exitFailed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, contestmod.Options{})
	stop()
	os.Exit(code)
}

// run executes one contest session and returns the process exit code.
// base carries module overrides, tests use it to swap the comment source
func run(ctx context.Context, args []string, stdout, stderr io.Writer, base contestmod.Options) int {
	fs := flag.NewFlagSet("contestwatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		fSecret   = fs.String("secret", "", "secret word to watch for")
		fKey      = fs.String("key", "", "YouTube Data API key")
		fVideo    = fs.String("video", "", "YouTube video id")
		fPreset   = fs.String("preset", "", "YAML preset with secret_word, api_key, video_id, poll_interval")
		fInterval = fs.Duration("interval", 0, "poll interval (default 10s)")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	l := logger.Named("cli")

	p, err := preset.Load(*fPreset)
	if err != nil {
		fmt.Fprintln(stderr, "preset:", err)
		return exitFailed
	}
	cfg := preset.Merge(p.Config(), domain.Config{
		SecretWord: *fSecret,
		APIKey:     *fKey,
		VideoID:    *fVideo,
	})

	opts := base
	opts.Interval = firstPositive(*fInterval, p.Interval(), base.Interval)

	mod, err := contestmod.New(ctx, modkit.Deps{Cfg: config.New(), Log: *l}, opts)
	if err != nil {
		fmt.Fprintln(stderr, "setup:", err)
		return exitFailed
	}
	defer func() {
		if err := mod.Close(); err != nil {
			l.Warn().Err(err).Msg("close contest module")
		}
	}()
	ports := mod.Ports().(contestmod.Ports)

	if err := ports.Monitor.StartWith(ctx, cfg); err != nil {
		if perr.IsCode(err, perr.ErrorCodeValidation) {
			fmt.Fprintf(stderr, "%s: %s\n", domain.MissingTitle(perr.FieldOf(err)), perr.WireFrom(err).Message)
		} else {
			fmt.Fprintln(stderr, "start:", err)
		}
		return exitFailed
	}
	fmt.Fprintf(stdout, "watching video %s for %q\n", cfg.VideoID, cfg.SecretWord)

	snap, err := ports.Waiter.Wait(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		ports.Monitor.Stop()
		fmt.Fprintln(stdout, "monitoring stopped")
		return exitInterrupted
	}

	switch {
	case snap.State == domain.StateWinnerFound && snap.Winner != nil:
		w := snap.Winner
		fmt.Fprintf(stdout, "winner: %s guessed %q (comment %s) at %s\n",
			w.Username, w.Word, w.CommentID, w.FoundAt.Format(time.RFC3339))
		return exitWinner
	case snap.LastError != "":
		fmt.Fprintln(stderr, "failed to check comments:", snap.LastError)
		return exitFailed
	default:
		fmt.Fprintln(stdout, "monitoring stopped")
		return exitInterrupted
	}
}

func firstPositive(ds ...time.Duration) time.Duration {
	for _, d := range ds {
		if d > 0 {
			return d
		}
	}
	return 0
}
