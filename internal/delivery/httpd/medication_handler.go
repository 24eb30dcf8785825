package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/DhruvR-16/ArogyaAI/internal/middleware"
	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) AddMedication(w http.ResponseWriter, r *http.Request) {
	var req models.MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	medication, err := h.medicationService.Add(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, medication)
}

func (h *Handler) ListMedications(w http.ResponseWriter, r *http.Request) {
	medications, err := h.medicationService.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, medications)
}

func (h *Handler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	var req models.MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	medication, err := h.medicationService.Update(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, medication)
}

func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	if err := h.medicationService.Delete(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Medication deleted successfully"})
}
