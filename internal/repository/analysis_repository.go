package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type AnalysisRepository interface {
	// CreateWithUploadTransition inserts the analysis row and flips the upload
	// to `analyzing` in one transaction.
	CreateWithUploadTransition(ctx context.Context, analysis *models.Analysis) error
	GetByID(ctx context.Context, userID, id string) (*models.Analysis, error)
	GetByIDAnyOwner(ctx context.Context, id string) (*models.Analysis, error)
	GetAll(ctx context.Context, userID string) ([]models.Analysis, error)
	GetStats(ctx context.Context, userID string) (*models.AnalysisStats, error)
	// Complete transitions processing -> completed and the linked upload to
	// `analyzed` in one transaction. Returns false when the analysis was not
	// in `processing` (terminal states are never overwritten).
	Complete(ctx context.Context, id string, results *models.AnalysisResults, completedAt time.Time) (bool, error)
	// Fail transitions processing -> failed and reverts the linked upload to
	// `uploaded` so the user can retry.
	Fail(ctx context.Context, id string) (bool, error)
	IncrementAttempts(ctx context.Context, id string) (int, error)
	GetStale(ctx context.Context, olderThan time.Time, limit int) ([]models.Analysis, error)
	Ping(ctx context.Context) error
}

type analysisRepository struct {
	*PostgresRepository
}

func NewAnalysisRepository(db *sql.DB, logger zerolog.Logger) AnalysisRepository {
	return &analysisRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *analysisRepository) CreateWithUploadTransition(ctx context.Context, analysis *models.Analysis) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO analyses (id, user_id, upload_id, status, results, attempts, created_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6)
	`

	if _, err := tx.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.UploadID,
		analysis.Status,
		analysis.Attempts,
		analysis.CreatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE uploads SET status = $1 WHERE id = $2`,
		models.UploadStatusAnalyzing.String(), analysis.UploadID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *analysisRepository) GetByID(ctx context.Context, userID, id string) (*models.Analysis, error) {
	query := `
		SELECT a.id, a.user_id, a.upload_id, a.status, a.results, a.attempts,
		       a.created_at, a.completed_at,
		       COALESCE(u.original_filename, ''), COALESCE(u.file_type, '')
		FROM analyses a
		LEFT JOIN uploads u ON a.upload_id = u.id
		WHERE a.id = $1 AND a.user_id = $2
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *analysisRepository) GetByIDAnyOwner(ctx context.Context, id string) (*models.Analysis, error) {
	query := `
		SELECT a.id, a.user_id, a.upload_id, a.status, a.results, a.attempts,
		       a.created_at, a.completed_at,
		       COALESCE(u.original_filename, ''), COALESCE(u.file_type, '')
		FROM analyses a
		LEFT JOIN uploads u ON a.upload_id = u.id
		WHERE a.id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *analysisRepository) GetAll(ctx context.Context, userID string) ([]models.Analysis, error) {
	query := `
		SELECT a.id, a.user_id, a.upload_id, a.status, a.results, a.attempts,
		       a.created_at, a.completed_at,
		       COALESCE(u.original_filename, ''), COALESCE(u.file_type, '')
		FROM analyses a
		LEFT JOIN uploads u ON a.upload_id = u.id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []models.Analysis
	for rows.Next() {
		analysis, err := r.scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *analysis)
	}

	return analyses, rows.Err()
}

func (r *analysisRepository) GetStats(ctx context.Context, userID string) (*models.AnalysisStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed,
			COUNT(CASE WHEN status = 'processing' THEN 1 END) AS processing,
			COUNT(CASE WHEN status = 'failed' THEN 1 END) AS failed
		FROM analyses
		WHERE user_id = $1
	`

	stats := &models.AnalysisStats{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.Total,
		&stats.Completed,
		&stats.Processing,
		&stats.Failed,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *analysisRepository) Complete(ctx context.Context, id string, results *models.AnalysisResults, completedAt time.Time) (bool, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return false, fmt.Errorf("failed to marshal results: %w", err)
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE analyses
		SET status = $1, results = $2, completed_at = $3
		WHERE id = $4 AND status = $5
	`,
		models.AnalysisStatusCompleted.String(),
		payload,
		completedAt,
		id,
		models.AnalysisStatusProcessing.String(),
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE uploads
		SET status = $1
		WHERE id = (SELECT upload_id FROM analyses WHERE id = $2)
	`, models.UploadStatusAnalyzed.String(), id); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *analysisRepository) Fail(ctx context.Context, id string) (bool, error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE analyses
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4
	`,
		models.AnalysisStatusFailed.String(),
		time.Now(),
		id,
		models.AnalysisStatusProcessing.String(),
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE uploads
		SET status = $1
		WHERE id = (SELECT upload_id FROM analyses WHERE id = $2)
	`, models.UploadStatusUploaded.String(), id); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *analysisRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx, `
		UPDATE analyses
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`, id).Scan(&attempts)
	return attempts, err
}

func (r *analysisRepository) GetStale(ctx context.Context, olderThan time.Time, limit int) ([]models.Analysis, error) {
	query := `
		SELECT a.id, a.user_id, a.upload_id, a.status, a.results, a.attempts,
		       a.created_at, a.completed_at,
		       COALESCE(u.original_filename, ''), COALESCE(u.file_type, '')
		FROM analyses a
		LEFT JOIN uploads u ON a.upload_id = u.id
		WHERE a.status = 'processing' AND a.created_at < $1
		ORDER BY a.created_at ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []models.Analysis
	for rows.Next() {
		analysis, err := r.scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *analysis)
	}

	return analyses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *analysisRepository) scanOne(row rowScanner) (*models.Analysis, error) {
	analysis, err := r.scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (r *analysisRepository) scanAnalysis(row rowScanner) (*models.Analysis, error) {
	analysis := &models.Analysis{}
	var uploadID sql.NullString
	var results []byte
	var completedAt sql.NullTime

	err := row.Scan(
		&analysis.ID,
		&analysis.UserID,
		&uploadID,
		&analysis.Status,
		&results,
		&analysis.Attempts,
		&analysis.CreatedAt,
		&completedAt,
		&analysis.OriginalFilename,
		&analysis.FileType,
	)
	if err != nil {
		return nil, err
	}

	if uploadID.Valid {
		analysis.UploadID = &uploadID.String
	}
	if completedAt.Valid {
		analysis.CompletedAt = &completedAt.Time
	}
	if len(results) > 0 {
		parsed := &models.AnalysisResults{}
		if err := json.Unmarshal(results, parsed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
		analysis.Results = parsed
	}

	return analysis, nil
}
