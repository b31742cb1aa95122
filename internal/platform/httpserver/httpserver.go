package httpserver

import (
	"net/http"
	"time"
)

// New builds the http.Server serving the public API. The timeouts here are
// outer bounds protecting the listener; per-request budgets are enforced by
// the handler middleware chains.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
