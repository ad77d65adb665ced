package handler

import (
	"encoding/json"
	"net/http"

	"github.com/regulens/standards-rag/service"
	"github.com/regulens/standards-rag/types"
)

type CautionHandler struct {
	cautions *service.CautionService
}

func NewCautionHandler(cautions *service.CautionService) *CautionHandler {
	return &CautionHandler{cautions: cautions}
}

// HandleCautions returns the per-ingredient caution mapping. An empty
// mapping means "no known cautions", never an error.
func (h *CautionHandler) HandleCautions() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		req, ok := h.decodeRequest(w, r)
		if !ok {
			return
		}
		cautionsMap := h.cautions.CautionsFor(r.Context(), req.Ingredients)
		h.sendSuccess(w, cautionsMap)
	})
}

// HandleCautionsText returns the rendered text block form.
func (h *CautionHandler) HandleCautionsText() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		req, ok := h.decodeRequest(w, r)
		if !ok {
			return
		}
		text := h.cautions.CautionsAsText(r.Context(), req.Ingredients)
		h.sendSuccess(w, text)
	})
}

func (h *CautionHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (types.CautionRequest, bool) {
	var req types.CautionRequest
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if len(req.Ingredients) == 0 {
		h.sendError(w, "No ingredients provided", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *CautionHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "error",
		"error":  message,
	})
}

func (h *CautionHandler) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status: "success",
		Data:   data,
	})
}
