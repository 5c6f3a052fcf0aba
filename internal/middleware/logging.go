package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Logging wraps next so that every outgoing request is logged with its
// status and duration. Headers are never logged; they carry the token.
func Logging(logger *slog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		resp, err := next.RoundTrip(r)

		duration := time.Since(start)

		if err != nil {
			logger.Warn("http request failed",
				slog.String("method", r.Method),
				slog.String("host", r.URL.Host),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
			return nil, err
		}

		logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("host", r.URL.Host),
			slog.String("path", r.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.Int64("size", resp.ContentLength),
			slog.Duration("duration", duration),
		)
		return resp, nil
	})
}
