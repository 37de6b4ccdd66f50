package http

import (
	"net/http"

	"contestwatch/internal/platform/net/http/bind"
)

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, JSONHandlerNoBody(h))
}

// PostJSON mounts a pure JSON handler for POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, JSONHandler(h, opts...))
}

// PostNoBody mounts a body-less JSON handler for POST
func PostNoBody(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, JSONHandlerNoBody(h))
}

// PutJSON mounts a pure JSON handler for PUT
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Put(path, JSONHandler(h, opts...))
}
