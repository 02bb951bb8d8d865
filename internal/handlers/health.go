package handlers

import "net/http"

// HealthHandler responds with service health information.
type HealthHandler struct {
	Backend string
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload := map[string]string{
		"status": "ok",
	}
	if h.Backend != "" {
		payload["store"] = h.Backend
	}

	respondJSON(r.Context(), w, http.StatusOK, payload)
}
