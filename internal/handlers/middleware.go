package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/metrics"
)

// RequestLogger logs every request and records it in the HTTP metrics
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.ObserveRequest(r.Method, status, elapsed)

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("HTTP request")
	})
}

// BasicAuth guards next with HTTP basic auth when a username is configured
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	if username == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.BasicAuth("patientchart", map[string]string{username: password})
}
