package httpkit

import (
	"net/http"

	phttp "contestwatch/internal/platform/net/http"
)

// Get registers a no-body handler and uses the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// Post registers a no-body handler and uses the envelope adapter
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.PostNoBody(r, path, h)
}

// PostJSON mounts a JSON body handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...JSONOptions) {
	phttp.PostJSON(r, path, h, opts...)
}

// PutJSON mounts a JSON body handler under PUT
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...JSONOptions) {
	phttp.PutJSON(r, path, h, opts...)
}
