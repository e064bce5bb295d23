// Package requesttime pins one "now" per HTTP request. Every sale rule
// evaluated while serving the request sees the same instant.
package requesttime

import (
	"net/http"
	"time"

	"crowdsale/pkg/requestcontext"
)

// Middleware captures time.Now at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable clock, for tests and replays.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
