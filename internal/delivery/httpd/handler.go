package httpd

import (
	"context"
	"errors"
	"net/http"

	"github.com/DhruvR-16/ArogyaAI/internal/middleware"
	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/service"
	"github.com/DhruvR-16/ArogyaAI/internal/service/integration"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	authService       service.AuthService
	uploadService     service.UploadService
	analysisService   service.AnalysisService
	reportService     service.ReportService
	predictionService service.PredictionService
	medicationService service.MedicationService
	profileService    service.ProfileService
	maxUploadSize     int64
	readiness         func(ctx context.Context) error
	logger            zerolog.Logger
}

func NewHandler(
	authService service.AuthService,
	uploadService service.UploadService,
	analysisService service.AnalysisService,
	reportService service.ReportService,
	predictionService service.PredictionService,
	medicationService service.MedicationService,
	profileService service.ProfileService,
	maxUploadSize int64,
	readiness func(ctx context.Context) error,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		authService:       authService,
		uploadService:     uploadService,
		analysisService:   analysisService,
		reportService:     reportService,
		predictionService: predictionService,
		medicationService: medicationService,
		profileService:    profileService,
		maxUploadSize:     maxUploadSize,
		readiness:         readiness,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/ready", h.ReadyCheck)

	router.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
		})

		// Everything below requires a bearer token
		api.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.authService))

			r.Route("/uploads", func(r chi.Router) {
				r.Post("/", h.UploadFile)
				r.Get("/", h.ListUploads)
				r.Get("/{id}", h.GetUpload)
				r.Get("/{id}/download", h.DownloadUpload)
				r.Delete("/{id}", h.DeleteUpload)
			})

			r.Route("/analyses", func(r chi.Router) {
				r.Post("/", h.StartAnalysis)
				r.Get("/", h.ListAnalyses)
				r.Get("/stats", h.GetAnalysisStats)
				r.Get("/{id}", h.GetAnalysis)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Post("/", h.GenerateReport)
				r.Get("/", h.ListReports)
				r.Get("/{id}", h.GetReport)
				r.Put("/{id}", h.UpdateReport)
				r.Delete("/{id}", h.DeleteReport)
			})

			r.Post("/predict", h.Predict)
			r.Get("/predictions", h.ListPredictions)

			r.Route("/medications", func(r chi.Router) {
				r.Post("/", h.AddMedication)
				r.Get("/", h.ListMedications)
				r.Put("/{id}", h.UpdateMedication)
				r.Delete("/{id}", h.DeleteMedication)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Put("/", h.UpdateProfile)
				r.Delete("/", h.DeleteProfile)
			})
		})
	})
}

// handleError maps service errors to HTTP responses. Services own the exact
// message strings; this only decides the status code.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var domainErr *models.DomainError
	message := err.Error()
	if !errors.As(err, &domainErr) {
		message = "Server error"
	}

	var upstreamErr *integration.UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(upstreamErr.Status)
		if len(upstreamErr.Body) > 0 {
			w.Write(upstreamErr.Body)
		}
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, message)
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, message)
	case errors.Is(err, models.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, message)
	case errors.Is(err, models.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, message)
	case errors.Is(err, models.ErrConfig), errors.Is(err, models.ErrStorage):
		// Server-side faults keep their message but report as 500.
		h.logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, message)
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
