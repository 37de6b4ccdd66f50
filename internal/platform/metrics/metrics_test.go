package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
)

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordPoll(PollOK, 3, time.Millisecond)
	m.RecordAPICall("youtube", 200, time.Millisecond)
	m.SessionStarted()
	m.SetState("idle", "idle")
	if m.Registry() != nil {
		t.Fatalf("nil metrics must not expose a registry")
	}

	h := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nil handler status = %d", rec.Code)
	}
}

func TestRecordPollCountsWinnersAndComments(t *testing.T) {
	m := New()
	m.RecordPoll(PollOK, 4, 10*time.Millisecond)
	m.RecordPoll(PollWinner, 2, 10*time.Millisecond)
	m.RecordPoll(PollFailed, 0, time.Millisecond)

	if mf := family(t, m, "contestwatch_comments_evaluated_total"); mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 6 {
		t.Fatalf("comments evaluated not 6: %v", mf)
	}
	if mf := family(t, m, "contestwatch_winners_total"); mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("winners not 1: %v", mf)
	}
	mf := family(t, m, "contestwatch_polls_total")
	if mf == nil || len(mf.GetMetric()) != 3 {
		t.Fatalf("expected 3 poll result series, got %v", mf)
	}
}

func TestSetStateOneHot(t *testing.T) {
	m := New()
	m.SetState("monitoring", "idle", "monitoring", "stopped")
	mf := family(t, m, "contestwatch_monitor_state")
	if mf == nil {
		t.Fatalf("state gauge missing")
	}
	for _, s := range mf.GetMetric() {
		want := 0.0
		if labelValue(s, "state") == "monitoring" {
			want = 1
		}
		if s.GetGauge().GetValue() != want {
			t.Fatalf("state %s = %v", labelValue(s, "state"), s.GetGauge().GetValue())
		}
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	mf := family(t, m, "contestwatch_http_requests_total")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("expected one series, got %v", mf)
	}
	s := mf.GetMetric()[0]
	if labelValue(s, "route") != "/items/{id}" || labelValue(s, "status") != "202" {
		t.Fatalf("labels = %v", s.GetLabel())
	}
}

func TestHandlerExposesFamilies(t *testing.T) {
	m := New()
	m.RecordAPICall("youtube", 500, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	res, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `contestwatch_api_calls_total{api="youtube",status="error"} 1`) {
		t.Fatalf("exposition missing api call series:\n%s", body)
	}
}
