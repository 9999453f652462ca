package http

import (
	"io"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, serverVersion)
}

// getServerInfo reports the version, page size and push transports.
func (h *Handler) getServerInfo(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.AppInfoService.GetServerInfo(r.Context()), http.StatusOK)
}
