// Package requesttime pins one "now" per HTTP request so audit events and
// logs within a request agree on the timestamp.
package requesttime

import (
	"net/http"
	"time"

	"curaframe/pkg/requestcontext"
)

// Middleware pins the wall clock at microsecond precision, the resolution
// the postgres history store keeps.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable clock.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().Truncate(time.Microsecond))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
