package httpapi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Throttle configuration (opt-in). Zero rps disables the middleware.
var (
	throttleRPS   float64
	throttleBurst int
)

// SetThrottle configures the global request rate limit. rps <= 0 disables it.
func SetThrottle(rps float64, burst int) {
	throttleRPS = rps
	throttleBurst = burst
}

func throttleLimiter() *rate.Limiter {
	if throttleRPS <= 0 {
		return nil
	}
	burst := throttleBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(throttleRPS), burst)
}

// throttleMiddleware rejects requests over the configured rate with 429.
func throttleMiddleware(l *rate.Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				IncrementBackpressure("ratelimit")
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
