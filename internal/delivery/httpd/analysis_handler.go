package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/DhruvR-16/ArogyaAI/internal/middleware"
	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.StartAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := h.analysisService.Start(r.Context(), middleware.UserID(r.Context()), req.UploadID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Analysis started",
		"analysis": analysis,
	})
}

func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.analysisService.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyses)
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.analysisService.Get(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) GetAnalysisStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analysisService.Stats(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
