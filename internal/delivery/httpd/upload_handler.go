package httpd

import (
	"io"
	"net/http"
	"strconv"

	"github.com/DhruvR-16/ArogyaAI/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	// A little headroom over the configured limit so an oversized file is
	// rejected with the service's message instead of a parse failure.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too large. Maximum size is 10MB.")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	fileType := r.FormValue("fileType")
	description := r.FormValue("description")

	upload, err := h.uploadService.Register(
		r.Context(),
		middleware.UserID(r.Context()),
		fileHeader.Filename,
		fileType,
		description,
		fileBytes,
	)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "File uploaded successfully",
		"upload":  upload,
	})
}

func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploadService.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploads)
}

func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := h.uploadService.Get(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, upload)
}

func (h *Handler) DownloadUpload(w http.ResponseWriter, r *http.Request) {
	upload, reader, size, err := h.uploadService.Download(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+upload.OriginalFilename+`"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error().Err(err).Str("upload_id", upload.ID).Msg("Failed to stream file")
	}
}

func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	if err := h.uploadService.Delete(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Upload deleted successfully"})
}
