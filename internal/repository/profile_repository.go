package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

type profileRepository struct {
	*PostgresRepository
}

func NewProfileRepository(db *sql.DB, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const profileColumns = `id, user_id, age, gender, blood_group, allergies, weight, height, created_at, updated_at`

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1
	`

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Age,
		&profile.Gender,
		&profile.BloodGroup,
		&profile.Allergies,
		&profile.Weight,
		&profile.Height,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// Upsert creates the profile row on first write, updates it afterwards.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, user_id, age, gender, blood_group, allergies, weight, height, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			blood_group = EXCLUDED.blood_group,
			allergies = EXCLUDED.allergies,
			weight = EXCLUDED.weight,
			height = EXCLUDED.height,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + profileColumns + `
	`

	now := time.Now()
	saved := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Age,
		profile.Gender,
		profile.BloodGroup,
		profile.Allergies,
		profile.Weight,
		profile.Height,
		now,
		now,
	).Scan(
		&saved.ID,
		&saved.UserID,
		&saved.Age,
		&saved.Gender,
		&saved.BloodGroup,
		&saved.Allergies,
		&saved.Weight,
		&saved.Height,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	return err
}
