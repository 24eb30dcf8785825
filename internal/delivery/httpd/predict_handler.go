package httpd

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/DhruvR-16/ArogyaAI/internal/middleware"
)

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	disease := r.URL.Query().Get("disease")

	features, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(features) == 0 {
		features = []byte("{}")
	} else if !json.Valid(features) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prediction, err := h.predictionService.Predict(r.Context(), middleware.UserID(r.Context()), disease, features)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}

func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.predictionService.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictions)
}
