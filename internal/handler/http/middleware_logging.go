package http

import (
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// withLogging writes one access log entry per request. httpsnoop keeps the
// optional interfaces of w (Hijacker, Flusher) so the push channel can still
// upgrade.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri := r.RequestURI
		method := r.Method

		m := httpsnoop.CaptureMetrics(next, w, r)

		logger.FromRequest(r).Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", m.Code).
			Dur("duration", m.Duration).
			Int64("size", m.Written).
			Send()
	})
}
