package handler

import (
	"encoding/json"
	"net/http"

	"github.com/regulens/standards-rag/service"
)

type HealthHandler struct {
	health *service.HealthService
}

func NewHealthHandler(health *service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// HandleHealth reports the end-to-end self-test. The endpoint always
// answers 200; consumers read the status field to decide whether to
// attempt caution retrieval at all.
func (h *HealthHandler) HandleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		status := h.health.Check(r.Context())
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(status)
	})
}
