package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
)

type ReportService interface {
	Generate(ctx context.Context, userID, analysisID, reportType string) (*models.Report, error)
	Get(ctx context.Context, userID, id string) (*models.Report, error)
	List(ctx context.Context, userID string) ([]models.Report, error)
	UpdateNotes(ctx context.Context, userID, id, notes string) (*models.Report, error)
	Delete(ctx context.Context, userID, id string) error
}

type reportService struct {
	reportRepo   repository.ReportRepository
	analysisRepo repository.AnalysisRepository
	logger       zerolog.Logger
}

func NewReportService(
	reportRepo repository.ReportRepository,
	analysisRepo repository.AnalysisRepository,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		reportRepo:   reportRepo,
		analysisRepo: analysisRepo,
		logger:       logger,
	}
}

// Generate snapshots a completed analysis into an immutable report row.
// The snapshot is copied by value at generation time, so later changes to the
// analysis or upload never show through.
func (s *reportService) Generate(ctx context.Context, userID, analysisID, reportType string) (*models.Report, error) {
	if strings.TrimSpace(analysisID) == "" {
		return nil, models.E(models.ErrInvalidInput, "Analysis ID is required")
	}

	analysis, err := s.analysisRepo.GetByID(ctx, userID, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up analysis: %w", err)
	}
	if analysis == nil {
		return nil, models.E(models.ErrNotFound, "Analysis not found")
	}

	if analysis.Status != models.AnalysisStatusCompleted.String() {
		return nil, models.E(models.ErrInvalidState, "Analysis not completed yet")
	}

	if reportType == "" {
		reportType = models.ReportTypeSummary
	}

	var results models.AnalysisResults
	if analysis.Results != nil {
		results = *analysis.Results
	}

	report := &models.Report{
		ID:         uuid.New().String(),
		UserID:     userID,
		AnalysisID: analysis.ID,
		ReportType: reportType,
		ReportData: models.ReportData{
			AnalysisID:   analysis.ID,
			Filename:     analysis.OriginalFilename,
			AnalysisDate: analysis.CompletedAt,
			Results:      results,
			ReportType:   reportType,
			GeneratedAt:  time.Now(),
		},
		CreatedAt:        time.Now(),
		OriginalFilename: analysis.OriginalFilename,
		FileType:         analysis.FileType,
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("analysis_id", analysis.ID).
		Str("user_id", userID).
		Str("report_type", reportType).
		Msg("Report generated")

	return report, nil
}

func (s *reportService) Get(ctx context.Context, userID, id string) (*models.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if report == nil {
		return nil, models.E(models.ErrNotFound, "Report not found")
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, userID string) ([]models.Report, error) {
	return s.reportRepo.GetAll(ctx, userID)
}

func (s *reportService) UpdateNotes(ctx context.Context, userID, id, notes string) (*models.Report, error) {
	updated, err := s.reportRepo.UpdateNotes(ctx, userID, id, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to update report notes: %w", err)
	}
	if !updated {
		return nil, models.E(models.ErrNotFound, "Report not found")
	}

	return s.Get(ctx, userID, id)
}

func (s *reportService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.reportRepo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if !deleted {
		return models.E(models.ErrNotFound, "Report not found")
	}
	return nil
}
