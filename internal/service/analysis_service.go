package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
	"github.com/DhruvR-16/ArogyaAI/internal/worker/queue"
)

type AnalysisService interface {
	// Start creates the analysis in `processing`, flips the upload to
	// `analyzing` and enqueues the completion job. It returns immediately;
	// callers poll Get until the status leaves `processing`.
	Start(ctx context.Context, userID, uploadID string) (*models.Analysis, error)
	Get(ctx context.Context, userID, id string) (*models.Analysis, error)
	List(ctx context.Context, userID string) ([]models.Analysis, error)
	Stats(ctx context.Context, userID string) (*models.AnalysisStats, error)
}

type AnalysisQueueConfig struct {
	Exchange   string
	RoutingKey string
}

type analysisService struct {
	analysisRepo repository.AnalysisRepository
	uploadRepo   repository.UploadRepository
	publisher    queue.Publisher
	logger       zerolog.Logger
	config       AnalysisQueueConfig
}

func NewAnalysisService(
	analysisRepo repository.AnalysisRepository,
	uploadRepo repository.UploadRepository,
	publisher queue.Publisher,
	logger zerolog.Logger,
	config AnalysisQueueConfig,
) AnalysisService {
	return &analysisService{
		analysisRepo: analysisRepo,
		uploadRepo:   uploadRepo,
		publisher:    publisher,
		logger:       logger,
		config:       config,
	}
}

func (s *analysisService) Start(ctx context.Context, userID, uploadID string) (*models.Analysis, error) {
	if strings.TrimSpace(uploadID) == "" {
		return nil, models.E(models.ErrInvalidInput, "Upload ID is required")
	}

	upload, err := s.uploadRepo.GetByID(ctx, userID, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify upload: %w", err)
	}
	if upload == nil {
		return nil, models.E(models.ErrNotFound, "Upload not found")
	}

	analysis := &models.Analysis{
		ID:               uuid.New().String(),
		UserID:           userID,
		UploadID:         &upload.ID,
		Status:           models.AnalysisStatusProcessing.String(),
		CreatedAt:        time.Now(),
		OriginalFilename: upload.OriginalFilename,
		FileType:         upload.FileType,
	}

	if err := s.analysisRepo.CreateWithUploadTransition(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	event := models.AnalysisRequestedEvent{
		AnalysisID: analysis.ID,
		UploadID:   upload.ID,
		UserID:     userID,
		FileType:   upload.FileType,
		Timestamp:  time.Now().Unix(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.publisher.Publish(ctx, s.config.Exchange, s.config.RoutingKey, body); err != nil {
		// The job never reached the queue; fail the analysis now rather than
		// leave it stuck in processing.
		if _, failErr := s.analysisRepo.Fail(ctx, analysis.ID); failErr != nil {
			s.logger.Error().Err(failErr).
				Str("analysis_id", analysis.ID).
				Msg("Failed to mark unpublishable analysis as failed")
		}
		return nil, fmt.Errorf("failed to enqueue analysis job: %w", err)
	}

	s.logger.Info().
		Str("analysis_id", analysis.ID).
		Str("upload_id", upload.ID).
		Str("user_id", userID).
		Msg("Analysis started")

	return analysis, nil
}

func (s *analysisService) Get(ctx context.Context, userID, id string) (*models.Analysis, error) {
	analysis, err := s.analysisRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if analysis == nil {
		return nil, models.E(models.ErrNotFound, "Analysis not found")
	}
	return analysis, nil
}

func (s *analysisService) List(ctx context.Context, userID string) ([]models.Analysis, error) {
	return s.analysisRepo.GetAll(ctx, userID)
}

func (s *analysisService) Stats(ctx context.Context, userID string) (*models.AnalysisStats, error) {
	return s.analysisRepo.GetStats(ctx, userID)
}
