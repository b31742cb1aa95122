package middleware

import (
	"net/http"
	"time"

	"cityline/pkg/requestcontext"
)

// RequestTime pins the wall clock for the request. Deadline arithmetic and
// urgency snapshots read time through the context, so every computation in a
// single request observes the same instant.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), time.Now().UTC())))
	})
}
