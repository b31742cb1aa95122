package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/httputil"
	"cityline/pkg/requestcontext"
)

// Recovery converts panics in downstream handlers into 500 responses.
// The stack is logged, never returned to the caller.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"panic", rec,
						"request_id", requestcontext.RequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
