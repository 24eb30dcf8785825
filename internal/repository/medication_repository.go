package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type MedicationRepository interface {
	Create(ctx context.Context, medication *models.Medication) error
	GetAll(ctx context.Context, userID string) ([]models.Medication, error)
	Update(ctx context.Context, medication *models.Medication) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	Ping(ctx context.Context) error
}

type medicationRepository struct {
	*PostgresRepository
}

func NewMedicationRepository(db *sql.DB, logger zerolog.Logger) MedicationRepository {
	return &medicationRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *medicationRepository) Create(ctx context.Context, medication *models.Medication) error {
	query := `
		INSERT INTO medications (id, user_id, name, dosage, frequency, time_of_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		medication.ID,
		medication.UserID,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Time,
		medication.CreatedAt,
		medication.UpdatedAt,
	)

	return err
}

func (r *medicationRepository) GetAll(ctx context.Context, userID string) ([]models.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, frequency, time_of_day, created_at, updated_at
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medications []models.Medication
	for rows.Next() {
		var m models.Medication
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Name,
			&m.Dosage,
			&m.Frequency,
			&m.Time,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		medications = append(medications, m)
	}

	return medications, rows.Err()
}

func (r *medicationRepository) Update(ctx context.Context, medication *models.Medication) (bool, error) {
	query := `
		UPDATE medications
		SET name = $1, dosage = $2, frequency = $3, time_of_day = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`

	res, err := r.db.ExecContext(ctx, query,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Time,
		time.Now(),
		medication.ID,
		medication.UserID,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *medicationRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM medications WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
