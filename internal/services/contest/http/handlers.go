// Package http provides the contest endpoints
package http

import (
	"net/http"
	"strconv"

	"contestwatch/internal/modkit/httpkit"
	perr "contestwatch/internal/platform/errors"
	pstrings "contestwatch/internal/platform/strings"
	"contestwatch/internal/services/contest/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Monitor domain.MonitorPort
	Feed    domain.EventFeedPort
}

type handlers struct {
	deps Deps
}

// Register mounts the contest routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/", h.snapshot)
	httpkit.Get(r, "/config", h.getConfig)
	httpkit.PutJSON(r, "/config", h.putConfig)
	httpkit.PostJSON(r, "/start", h.start, httpkit.JSONOptions{MaxBytes: 16 << 10, DisallowUnknown: true, AllowEmptyBody: true})
	httpkit.Post(r, "/stop", h.stop)
	httpkit.Get(r, "/winner", h.winner)
	httpkit.Get(r, "/events", h.events)
}

// ConfigView is the draft config with the API key masked
type ConfigView struct {
	SecretWord string `json:"secret_word"`
	APIKey     string `json:"api_key"`
	VideoID    string `json:"video_id"`
	Complete   bool   `json:"complete"`
}

func viewOf(c domain.Config) ConfigView {
	return ConfigView{
		SecretWord: c.SecretWord,
		APIKey:     pstrings.Mask(c.APIKey),
		VideoID:    c.VideoID,
		Complete:   c.Validate() == nil,
	}
}

// ConfigPatch sets any subset of the draft config
type ConfigPatch struct {
	SecretWord *string `json:"secret_word" validate:"omitempty,max=200"`
	APIKey     *string `json:"api_key"     validate:"omitempty,max=200"`
	VideoID    *string `json:"video_id"    validate:"omitempty,max=64"`
}

// StartRequest optionally overrides draft fields before starting
type StartRequest struct {
	SecretWord string `json:"secret_word" validate:"max=200"`
	APIKey     string `json:"api_key"     validate:"max=200"`
	VideoID    string `json:"video_id"    validate:"max=64"`
}

func (h *handlers) snapshot(_ *http.Request) (any, error) {
	return h.deps.Monitor.Snapshot(), nil
}

func (h *handlers) getConfig(_ *http.Request) (any, error) {
	return viewOf(h.deps.Monitor.Config()), nil
}

func (h *handlers) putConfig(_ *http.Request, in ConfigPatch) (any, error) {
	m := h.deps.Monitor
	if in.SecretWord != nil {
		if err := m.SetSecretWord(*in.SecretWord); err != nil {
			return nil, err
		}
	}
	if in.APIKey != nil {
		if err := m.SetAPIKey(*in.APIKey); err != nil {
			return nil, err
		}
	}
	if in.VideoID != nil {
		if err := m.SetVideoID(*in.VideoID); err != nil {
			return nil, err
		}
	}
	return viewOf(m.Config()), nil
}

// start runs the first poll before replying, so the snapshot already reflects it
func (h *handlers) start(r *http.Request, in StartRequest) (any, error) {
	m := h.deps.Monitor
	draft := m.Config()
	cfg := domain.Config{
		SecretWord: pstrings.FirstNonBlank(in.SecretWord, draft.SecretWord),
		APIKey:     pstrings.FirstNonBlank(in.APIKey, draft.APIKey),
		VideoID:    pstrings.FirstNonBlank(in.VideoID, draft.VideoID),
	}
	if err := m.StartWith(r.Context(), cfg); err != nil {
		return nil, err
	}
	return httpkit.Accepted(m.Snapshot()), nil
}

func (h *handlers) stop(_ *http.Request) (any, error) {
	h.deps.Monitor.Stop()
	return h.deps.Monitor.Snapshot(), nil
}

func (h *handlers) winner(_ *http.Request) (any, error) {
	w, ok := h.deps.Monitor.Winner()
	if !ok {
		return nil, perr.NotFoundf("no winner yet")
	}
	return w, nil
}

func (h *handlers) events(r *http.Request) (any, error) {
	if h.deps.Feed == nil {
		return []domain.Event{}, nil
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, perr.WithField(perr.InvalidArgf("limit must be a non negative integer"), "limit")
		}
		limit = n
	}
	return h.deps.Feed.Recent(limit), nil
}
