package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "contestwatch/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(stdctx.Context) error { return p.err }

func serve(t *testing.T, d Deps, path string) []byte {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d %s", path, rec.Code, rec.Body.String())
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestReady(t *testing.T) {
	cases := []struct {
		name   string
		checks map[string]any
		want   string
	}{
		{"none configured", map[string]any{"redis": nil}, "ok"},
		{"healthy", map[string]any{"redis": pinger{}}, "ok"},
		{"failing", map[string]any{"redis": pinger{err: errors.New("refused")}}, "fail"},
		{"not pingable", map[string]any{"thing": struct{}{}}, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got ReadyResponse
			if err := json.Unmarshal(serve(t, Deps{Checks: tc.checks}, "/ready"), &got); err != nil {
				t.Fatal(err)
			}
			if got.Status != tc.want || len(got.Checks) != 1 {
				t.Fatalf("ready = %+v", got)
			}
		})
	}
}

func TestVersionAndService(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := Deps{
		ServiceName: "contestwatch-api",
		StartedAt:   start,
		Now:         func() time.Time { return start.Add(90 * time.Second) },
	}

	var v struct {
		Service string `json:"service"`
	}
	if err := json.Unmarshal(serve(t, d, "/version"), &v); err != nil {
		t.Fatal(err)
	}
	if v.Service != "contestwatch-api" {
		t.Fatalf("version = %+v", v)
	}

	var s ServiceResponse
	if err := json.Unmarshal(serve(t, d, "/service"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Uptime != 90 || s.Started != "2026-01-01T12:00:00Z" {
		t.Fatalf("service = %+v", s)
	}
}
