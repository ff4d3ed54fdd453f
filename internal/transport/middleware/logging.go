package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// sensitiveHeaders are header names that must never reach the logs.
var sensitiveHeaders = []string{
	"authorization",
	"cookie",
	"x-api-key",
}

func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", filterSensitiveHeaders(r.Header),
			)

			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			statusCode := ww.statusCode
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			logLevel := slog.LevelInfo
			if statusCode >= 500 {
				logLevel = slog.LevelError
			} else if statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "response",
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string)

	for name, values := range headers {
		lowerName := strings.ToLower(name)

		isSensitive := false
		for _, sensitive := range sensitiveHeaders {
			if strings.Contains(lowerName, sensitive) {
				isSensitive = true
				break
			}
		}

		if isSensitive {
			filtered[name] = "[FILTERED]"
		} else {
			filtered[name] = strings.Join(values, ", ")
		}
	}

	return filtered
}
