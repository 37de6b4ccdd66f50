package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"contestwatch/internal/modkit/module"
	"contestwatch/internal/platform/config"
	"contestwatch/internal/platform/metrics"
	phttp "contestwatch/internal/platform/net/http"
	"contestwatch/internal/platform/testkit"
	"contestwatch/internal/services/contest/domain"
	contestmod "contestwatch/internal/services/contest/module"

	"github.com/go-chi/chi/v5"
)

type noComments struct{}

func (noComments) FetchComments(context.Context, domain.FetchRequest) ([]domain.Comment, error) {
	return nil, nil
}

func TestMount_Routes(t *testing.T) {
	t.Cleanup(module.Reset)

	mux := chi.NewRouter()
	contest, err := Mount(context.Background(), phttp.AdaptChi(mux), Options{
		Config:  config.New(),
		Metrics: metrics.New(),
		Contest: contestmod.Options{Fetcher: noComments{}},
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(func() { _ = contest.Close() })

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	for _, path := range []string{"/health", "/api/v1/health", "/api/v1/meta/ready", "/api/v1/contest"} {
		if rec := get(path); rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d %s", path, rec.Code, rec.Body.String())
		}
	}

	rec := get("/api/v1/meta/version")
	testkit.MustContain(t, rec.Body.String(), `"service":"contestwatch-api"`)

	rec = get("/api/v1/contest")
	testkit.MustContain(t, rec.Body.String(), `"state":"idle"`)
	testkit.MustContain(t, rec.Body.String(), `"request_id":`)

	rec = get("/metrics")
	testkit.MustContain(t, rec.Body.String(), "contestwatch_http_requests_total")

	if _, ok := module.PortsAs[contestmod.Ports]("contest"); !ok {
		t.Fatal("contest ports not registered")
	}
}

func TestMount_BadRedisURL(t *testing.T) {
	t.Cleanup(module.Reset)
	_, err := Mount(context.Background(), phttp.AdaptChi(chi.NewRouter()), Options{
		Config:  config.New(),
		Contest: contestmod.Options{Fetcher: noComments{}, RedisURL: "::bad"},
	})
	if err == nil {
		t.Fatal("expected error for an unparsable redis url")
	}
}
