package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	GetAll(ctx context.Context, userID string) ([]models.Prediction, error)
	Ping(ctx context.Context) error
}

type predictionRepository struct {
	*PostgresRepository
}

func NewPredictionRepository(db *sql.DB, logger zerolog.Logger) PredictionRepository {
	return &predictionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *predictionRepository) Create(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, user_id, disease_type, input_values, prediction, probability, risk_category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		prediction.ID,
		prediction.UserID,
		prediction.DiseaseType,
		[]byte(prediction.InputValues),
		prediction.Prediction,
		prediction.Probability,
		prediction.RiskCategory,
		prediction.CreatedAt,
	)

	return err
}

func (r *predictionRepository) GetAll(ctx context.Context, userID string) ([]models.Prediction, error) {
	query := `
		SELECT id, user_id, disease_type, input_values, prediction, probability, risk_category, created_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		var p models.Prediction
		var input []byte
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.DiseaseType,
			&input,
			&p.Prediction,
			&p.Probability,
			&p.RiskCategory,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.InputValues = input
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}
