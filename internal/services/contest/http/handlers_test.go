package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contestwatch/internal/adapters/notify"
	perr "contestwatch/internal/platform/errors"
	phttp "contestwatch/internal/platform/net/http"
	"contestwatch/internal/services/contest/domain"

	"github.com/go-chi/chi/v5"
)

type fakeMonitor struct {
	draft      domain.Config
	started    *domain.Config
	stopped    int
	monitoring bool
	startErr   error
	winner     *domain.Winner
}

func (f *fakeMonitor) conflict() error {
	if f.monitoring {
		return perr.Conflictf("configuration cannot change while monitoring")
	}
	return nil
}

func (f *fakeMonitor) SetSecretWord(w string) error {
	if err := f.conflict(); err != nil {
		return err
	}
	f.draft.SecretWord = w
	return nil
}

func (f *fakeMonitor) SetAPIKey(k string) error {
	if err := f.conflict(); err != nil {
		return err
	}
	f.draft.APIKey = k
	return nil
}

func (f *fakeMonitor) SetVideoID(id string) error {
	if err := f.conflict(); err != nil {
		return err
	}
	f.draft.VideoID = id
	return nil
}

func (f *fakeMonitor) Config() domain.Config           { return f.draft }
func (f *fakeMonitor) Start(ctx context.Context) error { return f.StartWith(ctx, f.draft) }
func (f *fakeMonitor) Stop()                           { f.stopped++; f.monitoring = false }
func (f *fakeMonitor) Winner() (domain.Winner, bool)   { return derefWinner(f.winner) }
func (f *fakeMonitor) StartWith(_ context.Context, cfg domain.Config) error {
	f.draft = cfg
	if f.startErr != nil {
		return f.startErr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.started = &cfg
	f.monitoring = true
	return nil
}

func (f *fakeMonitor) Snapshot() domain.Snapshot {
	st := domain.StateIdle
	if f.monitoring {
		st = domain.StateMonitoring
	} else if f.stopped > 0 {
		st = domain.StateStopped
	}
	return domain.Snapshot{State: st, Label: st.Label(), Winner: f.winner}
}

func derefWinner(w *domain.Winner) (domain.Winner, bool) {
	if w == nil {
		return domain.Winner{}, false
	}
	return *w, true
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Code       perr.ErrorCode  `json:"code"`
	Field      string          `json:"field"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func newAPI(m *fakeMonitor, feed domain.EventFeedPort) http.Handler {
	mux := chi.NewRouter()
	phttp.AdaptChi(mux).Route("/contest", func(r phttp.Router) {
		Register(r, Deps{Monitor: m, Feed: feed})
	})
	return mux
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	var req *http.Request
	if rd != nil {
		req = httptest.NewRequest(method, path, rd)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: bad body %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestSnapshot(t *testing.T) {
	api := newAPI(&fakeMonitor{}, nil)
	code, env := call(t, api, http.MethodGet, "/contest/", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var s domain.Snapshot
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatal(err)
	}
	if s.State != domain.StateIdle || s.Label != "Idle" {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestConfig_PutAndGetMasksKey(t *testing.T) {
	m := &fakeMonitor{}
	api := newAPI(m, nil)

	code, env := call(t, api, http.MethodPut, "/contest/config", `{"secret_word":"banana","api_key":"AIzaSecret1234"}`)
	if code != http.StatusOK {
		t.Fatalf("put = %d %+v", code, env)
	}
	if m.draft.APIKey != "AIzaSecret1234" || m.draft.SecretWord != "banana" {
		t.Fatalf("draft = %+v", m.draft)
	}

	code, env = call(t, api, http.MethodPut, "/contest/config", `{"video_id":"V"}`)
	if code != http.StatusOK || m.draft.SecretWord != "banana" {
		t.Fatalf("partial put lost fields: %d %+v", code, m.draft)
	}

	code, env = call(t, api, http.MethodGet, "/contest/config", "")
	if code != http.StatusOK {
		t.Fatalf("get = %d", code)
	}
	var v ConfigView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatal(err)
	}
	if v.APIKey != "**********1234" || !v.Complete || v.VideoID != "V" {
		t.Fatalf("view = %+v", v)
	}
	if strings.Contains(string(env.Data), "AIzaSecret") {
		t.Fatalf("api key leaked: %s", env.Data)
	}
}

func TestConfig_PutRejectedWhileMonitoring(t *testing.T) {
	m := &fakeMonitor{monitoring: true}
	code, env := call(t, newAPI(m, nil), http.MethodPut, "/contest/config", `{"secret_word":"kiwi"}`)
	if code != http.StatusConflict || env.Code != perr.ErrorCodeConflict {
		t.Fatalf("put = %d %+v", code, env)
	}
}

func TestConfig_PutRejectsUnknownAndLongFields(t *testing.T) {
	api := newAPI(&fakeMonitor{}, nil)
	code, env := call(t, api, http.MethodPut, "/contest/config", `{"secret":"x"}`)
	if code != http.StatusBadRequest || env.Code != perr.ErrorCodeJSON {
		t.Fatalf("unknown field = %d %+v", code, env)
	}
	long := strings.Repeat("v", 65)
	code, env = call(t, api, http.MethodPut, "/contest/config", `{"video_id":"`+long+`"}`)
	if code != http.StatusBadRequest || env.Field != "video_id" {
		t.Fatalf("long field = %d %+v", code, env)
	}
}

func TestStart_WithBodyOverridesDraft(t *testing.T) {
	m := &fakeMonitor{draft: domain.Config{SecretWord: "banana", APIKey: "X", VideoID: "old"}}
	code, env := call(t, newAPI(m, nil), http.MethodPost, "/contest/start", `{"video_id":"new"}`)
	if code != http.StatusAccepted {
		t.Fatalf("start = %d %+v", code, env)
	}
	if m.started == nil || *m.started != (domain.Config{SecretWord: "banana", APIKey: "X", VideoID: "new"}) {
		t.Fatalf("started with %+v", m.started)
	}
}

func TestStart_EmptyBodyUsesDraft(t *testing.T) {
	m := &fakeMonitor{draft: domain.Config{SecretWord: "banana", APIKey: "X", VideoID: "V"}}
	code, _ := call(t, newAPI(m, nil), http.MethodPost, "/contest/start", "")
	if code != http.StatusAccepted || m.started == nil {
		t.Fatalf("start = %d", code)
	}
}

func TestStart_ValidationError(t *testing.T) {
	m := &fakeMonitor{draft: domain.Config{SecretWord: "banana", VideoID: "V"}}
	code, env := call(t, newAPI(m, nil), http.MethodPost, "/contest/start", "")
	if code != http.StatusBadRequest || env.Code != perr.ErrorCodeValidation || env.Field != domain.FieldAPIKey {
		t.Fatalf("start = %d %+v", code, env)
	}
	if m.started != nil {
		t.Fatal("monitor started")
	}
}

func TestStop_AlwaysOK(t *testing.T) {
	m := &fakeMonitor{}
	api := newAPI(m, nil)
	for range 2 {
		code, _ := call(t, api, http.MethodPost, "/contest/stop", "")
		if code != http.StatusOK {
			t.Fatalf("stop = %d", code)
		}
	}
	if m.stopped != 2 {
		t.Fatalf("stopped = %d", m.stopped)
	}
}

func TestWinner(t *testing.T) {
	m := &fakeMonitor{}
	api := newAPI(m, nil)
	code, env := call(t, api, http.MethodGet, "/contest/winner", "")
	if code != http.StatusNotFound || env.Code != perr.ErrorCodeNotFound {
		t.Fatalf("no winner = %d %+v", code, env)
	}

	m.winner = &domain.Winner{Username: "Bo", Word: "pineapple", CommentID: "c2", FoundAt: time.Unix(10, 0).UTC()}
	code, env = call(t, api, http.MethodGet, "/contest/winner", "")
	if code != http.StatusOK {
		t.Fatalf("winner = %d", code)
	}
	var w domain.Winner
	if err := json.Unmarshal(env.Data, &w); err != nil {
		t.Fatal(err)
	}
	if w.Username != "Bo" || w.Word != "pineapple" {
		t.Fatalf("winner = %+v", w)
	}
}

func TestEvents(t *testing.T) {
	feed := notify.NewFeed(10)
	for _, k := range []domain.EventKind{domain.EventStarted, domain.EventWinnerFound} {
		feed.Notify(context.Background(), domain.Event{Kind: k, Title: string(k)})
	}
	api := newAPI(&fakeMonitor{}, feed)

	code, env := call(t, api, http.MethodGet, "/contest/events?limit=1", "")
	if code != http.StatusOK {
		t.Fatalf("events = %d", code)
	}
	var evs []domain.Event
	if err := json.Unmarshal(env.Data, &evs); err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != domain.EventWinnerFound {
		t.Fatalf("events = %+v", evs)
	}

	code, env = call(t, api, http.MethodGet, "/contest/events?limit=x", "")
	if code != http.StatusUnprocessableEntity || env.Field != "limit" {
		t.Fatalf("bad limit = %d %+v", code, env)
	}

	code, _ = call(t, newAPI(&fakeMonitor{}, nil), http.MethodGet, "/contest/events", "")
	if code != http.StatusOK {
		t.Fatalf("no feed = %d", code)
	}
}
