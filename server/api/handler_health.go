package api

import (
	"net/http"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	version := h.version

	if version == "" {
		version = "dev"
	}

	writeJson(w, HealthResponse{
		Status: "healthy",

		Service: serviceName,
		Version: version,
	})
}
