package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type UploadRepository interface {
	Create(ctx context.Context, upload *models.Upload) error
	GetByID(ctx context.Context, userID, id string) (*models.Upload, error)
	GetAll(ctx context.Context, userID string) ([]models.Upload, error)
	Delete(ctx context.Context, userID, id string) (*models.Upload, error)
	Ping(ctx context.Context) error
}

type uploadRepository struct {
	*PostgresRepository
}

func NewUploadRepository(db *sql.DB, logger zerolog.Logger) UploadRepository {
	return &uploadRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const uploadColumns = `
	id, user_id, filename, original_filename, storage_bucket, storage_path,
	file_type, file_size, description, status, created_at
`

func (r *uploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	query := `
		INSERT INTO uploads (
			id, user_id, filename, original_filename, storage_bucket, storage_path,
			file_type, file_size, description, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		upload.ID,
		upload.UserID,
		upload.Filename,
		upload.OriginalFilename,
		upload.StorageBucket,
		upload.StoragePath,
		upload.FileType,
		upload.FileSize,
		upload.Description,
		upload.Status,
		upload.CreatedAt,
	)

	return err
}

func (r *uploadRepository) GetByID(ctx context.Context, userID, id string) (*models.Upload, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		WHERE id = $1 AND user_id = $2
	`

	upload := &models.Upload{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&upload.ID,
		&upload.UserID,
		&upload.Filename,
		&upload.OriginalFilename,
		&upload.StorageBucket,
		&upload.StoragePath,
		&upload.FileType,
		&upload.FileSize,
		&upload.Description,
		&upload.Status,
		&upload.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return upload, nil
}

func (r *uploadRepository) GetAll(ctx context.Context, userID string) ([]models.Upload, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		var upload models.Upload
		if err := rows.Scan(
			&upload.ID,
			&upload.UserID,
			&upload.Filename,
			&upload.OriginalFilename,
			&upload.StorageBucket,
			&upload.StoragePath,
			&upload.FileType,
			&upload.FileSize,
			&upload.Description,
			&upload.Status,
			&upload.CreatedAt,
		); err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}

	return uploads, rows.Err()
}

// Delete removes the metadata row and unlinks dependent analyses so they
// survive as audit records. Returns the deleted row so the caller can clean
// up the stored blob.
func (r *uploadRepository) Delete(ctx context.Context, userID, id string) (*models.Upload, error) {
	upload, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, nil
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE analyses SET upload_id = NULL WHERE upload_id = $1`, id,
	); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM uploads WHERE id = $1 AND user_id = $2`, id, userID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return upload, nil
}
