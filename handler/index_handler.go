package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/regulens/standards-rag/service"
	"github.com/regulens/standards-rag/types"
)

type IndexHandler struct {
	indexing  *service.IndexingService
	websocket *service.WebSocketService
}

func NewIndexHandler(indexing *service.IndexingService, websocket *service.WebSocketService) *IndexHandler {
	return &IndexHandler{indexing: indexing, websocket: websocket}
}

// HandleReindex forces a fresh corpus scan and returns the pass summary.
func (h *IndexHandler) HandleReindex() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		summary, err := h.indexing.Reindex(r.Context(), nil)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, types.ErrNoCorpus) {
				status = http.StatusServiceUnavailable
			}
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "error",
				"error":  err.Error(),
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(types.DataResponse{
			Status: "success",
			Data:   summary,
		})
	})
}

// HandleReindexWS streams per-document progress over a websocket.
func (h *IndexHandler) HandleReindexWS() http.Handler {
	return http.HandlerFunc(h.websocket.HandleReindex)
}
