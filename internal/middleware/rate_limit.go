package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/workout-tracker/pkg/http"
	"github.com/go-chi/httprate"
)

// DefaultLoginRequestsPerMinute is the per-IP budget on the login route
const DefaultLoginRequestsPerMinute = 10

// LoginRateLimit limits login requests per client IP. It sits in front of the
// failed-attempt tracker and never touches its counters.
func LoginRateLimit(requestsPerMinute int) func(next http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultLoginRequestsPerMinute
	}

	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests")
		}),
	)
}
