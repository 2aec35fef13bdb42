package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/platform"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger attaches a logger carrying the request ID to the request
// context and logs each request when it completes.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = platform.NewRequestID()
			}
			w.Header().Set(requestIDHeader, requestID)

			l := logger.With().Str("request_id", requestID).Logger()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r.WithContext(l.WithContext(r.Context())))

			event := l.Info()
			if sw.Status() >= http.StatusInternalServerError {
				event = l.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
