package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/DhruvR-16/ArogyaAI/internal/middleware"
	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	// nil means the user has not filled a profile yet
	if profile == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"profile": nil})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.profileService.Upsert(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	if r.URL.Query().Get("action") == "delete_account" {
		if err := h.profileService.DeleteAccount(r.Context(), userID); err != nil {
			h.handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
		return
	}

	if err := h.profileService.Clear(r.Context(), userID); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile cleared successfully"})
}
