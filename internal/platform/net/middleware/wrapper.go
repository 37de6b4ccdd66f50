// Package middleware provides thin adapters over chi middleware without leaking chi types
package middleware

import (
	"net/http"
	"time"

	pstrings "contestwatch/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID attaches or propagates X-Request-ID and stores it on context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP sets RemoteAddr to the upstream IP based on X-Forwarded-For headers
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// NoCache sets headers to disable client and proxy caching
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// StripSlashes strips a trailing slash from the request path
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Heartbeat replies with 200 OK to GET path, useful for LB health checks
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins []string
	MaxAge         int
}

// CORS wraps go-chi/cors for a browser dashboard driving the monitor
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}

// StackOptions tunes CommonStack
type StackOptions struct {
	CORSOrigins []string
	Slow        time.Duration
	Timeout     time.Duration
	// HealthPath is matched against the full request path, so a stack mounted
	// under /api/v1 needs /api/v1/health
	HealthPath string
}

// CommonStack returns the baseline middleware slice for the API
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.HealthPath == "" {
		o.HealthPath = "/health"
	}
	return []func(http.Handler) http.Handler{
		RequestID(),
		RealIP(),
		RecoverJSON,
		NoCache(),
		AccessLogZerolog(AccessLogOptions{Slow: o.Slow}),
		CORS(CORSOptions{AllowedOrigins: o.CORSOrigins}),
		Heartbeat(o.HealthPath),
		StripSlashes(),
		Timeout(o.Timeout),
	}
}
