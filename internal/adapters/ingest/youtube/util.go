package youtube

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	pstrings "contestwatch/internal/platform/strings"
)

// StatusError carries a non 2xx response from the API
type StatusError struct {
	Status int
	// Body is a short tail of the response body for diagnostics
	Body string
}

// Error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("youtube status %d", e.Status)
}

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	_ = drainAndClose(resp.Body)
	return &StatusError{Status: resp.StatusCode, Body: pstrings.Tail(string(body), 512)}
}

// StatusOf returns the HTTP status behind err, or 0 when err did not come from a response
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// redact strips the URL (and with it the API key) from transport errors
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
