package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
	"github.com/DhruvR-16/ArogyaAI/internal/service/integration"
)

type PredictionService interface {
	// Predict calls the external model synchronously and persists the
	// returned prediction as a record owned by the user.
	Predict(ctx context.Context, userID, disease string, features json.RawMessage) (*models.Prediction, error)
	List(ctx context.Context, userID string) ([]models.Prediction, error)
}

type predictionService struct {
	predictionRepo repository.PredictionRepository
	mlClient       integration.MLClient
	logger         zerolog.Logger
}

func NewPredictionService(
	predictionRepo repository.PredictionRepository,
	mlClient integration.MLClient,
	logger zerolog.Logger,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		mlClient:       mlClient,
		logger:         logger,
	}
}

func (s *predictionService) Predict(ctx context.Context, userID, disease string, features json.RawMessage) (*models.Prediction, error) {
	result, err := s.mlClient.Predict(ctx, disease, features)
	if err != nil {
		return nil, err
	}

	prediction := &models.Prediction{
		ID:           uuid.New().String(),
		UserID:       userID,
		DiseaseType:  disease,
		InputValues:  features,
		Prediction:   result.Prediction,
		Probability:  result.Probability,
		RiskCategory: result.RiskCategory,
		CreatedAt:    time.Now(),
	}

	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	s.logger.Info().
		Str("prediction_id", prediction.ID).
		Str("user_id", userID).
		Str("disease", disease).
		Str("risk_category", prediction.RiskCategory).
		Msg("Prediction saved")

	return prediction, nil
}

func (s *predictionService) List(ctx context.Context, userID string) ([]models.Prediction, error) {
	return s.predictionRepo.GetAll(ctx, userID)
}
