package httpkit

import (
	"net/http"
	"time"

	"contestwatch/internal/platform/net/middleware"
)

// StackOptions configures the per API middleware stack
type StackOptions = middleware.StackOptions

// CommonStack returns the baseline API middleware slice
// compose extra middleware in main as needed
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Slow <= 0 {
		o.Slow = 2 * time.Second
	}
	return middleware.CommonStack(o)
}
