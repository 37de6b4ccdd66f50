package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "contestwatch/internal/platform/errors"
	"contestwatch/internal/platform/logger"
	phttp "contestwatch/internal/platform/net/http"
	pnet "contestwatch/internal/platform/net"
)

// RecoverJSON converts panics into a JSON 500 envelope and logs the stack with request id
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())

			logger.C(r.Context()).Error().
				Str("request_id", reqID).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			err := perr.PanicErrf("panic recovered")
			phttp.JSON(w, stdhttp.StatusInternalServerError, phttp.Envelope{
				StatusCode: stdhttp.StatusInternalServerError,
				Status:     stdhttp.StatusText(stdhttp.StatusInternalServerError),
				Code:       perr.CodeOf(err),
				Error:      err.Error(),
				RequestID:  reqID,
			})
		}()
		next.ServeHTTP(w, r)
	})
}
