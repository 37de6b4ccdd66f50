// Package metrics owns the Prometheus registry and the collectors the service reports on
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contestwatch"

// Poll outcomes used as the result label on polls_total
const (
	PollOK        = "ok"
	PollFailed    = "failed"
	PollWinner    = "winner"
	PollDiscarded = "discarded"
)

// Metrics is an instance scoped registry plus the collectors we record into.
// A nil *Metrics is valid and records nothing
type Metrics struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	apiCalls    *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec

	polls             *prometheus.CounterVec
	pollDuration      prometheus.Histogram
	commentsEvaluated prometheus.Counter
	sessions          prometheus.Counter
	winners           prometheus.Counter
	state             *prometheus.GaugeVec
}

// New builds a fresh registry with runtime collectors and the service collectors registered
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_time_seconds",
			Help:      "HTTP response time in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "Outbound API calls",
		}, []string{"api", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_response_time_seconds",
			Help:      "Outbound API response time in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 15, 20, 30},
		}, []string{"api"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Comment polls by result",
		}, []string{"result"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Wall time of a single poll including the fetch",
			Buckets:   prometheus.DefBuckets,
		}),
		commentsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_evaluated_total",
			Help:      "Comments checked against the secret word",
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Monitoring sessions started",
		}),
		winners: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "winners_total",
			Help:      "Sessions that ended with a winner",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_state",
			Help:      "1 for the current monitor state, 0 otherwise",
		}, []string{"state"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.apiCalls, m.apiDuration,
		m.polls, m.pollDuration, m.commentsEvaluated,
		m.sessions, m.winners, m.state,
	)
	return m
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware records request counts and latency keyed by chi route pattern
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// RecordAPICall records an outbound call; status 0 means a transport failure
func (m *Metrics) RecordAPICall(api string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "success"
	if status < 200 || status >= 400 {
		label = "error"
	}
	m.apiCalls.WithLabelValues(api, label).Inc()
	m.apiDuration.WithLabelValues(api).Observe(d.Seconds())
}

// RecordPoll records one poll outcome and how many new comments it evaluated
func (m *Metrics) RecordPoll(result string, evaluated int, d time.Duration) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
	m.pollDuration.Observe(d.Seconds())
	if evaluated > 0 {
		m.commentsEvaluated.Add(float64(evaluated))
	}
	if result == PollWinner {
		m.winners.Inc()
	}
}

// SessionStarted counts a new monitoring session
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// SetState flips the state gauge so exactly one of states reads 1
func (m *Metrics) SetState(current string, states ...string) {
	if m == nil {
		return
	}
	for _, s := range states {
		v := 0.0
		if s == current {
			v = 1
		}
		m.state.WithLabelValues(s).Set(v)
	}
}
