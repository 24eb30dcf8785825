package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, userID, id string) (*models.Report, error)
	GetAll(ctx context.Context, userID string) ([]models.Report, error)
	UpdateNotes(ctx context.Context, userID, id, notes string) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	Ping(ctx context.Context) error
}

type reportRepository struct {
	*PostgresRepository
}

func NewReportRepository(db *sql.DB, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	payload, err := json.Marshal(report.ReportData)
	if err != nil {
		return fmt.Errorf("failed to marshal report data: %w", err)
	}

	query := `
		INSERT INTO reports (id, user_id, analysis_id, report_type, report_data, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		report.ID,
		report.UserID,
		report.AnalysisID,
		report.ReportType,
		payload,
		report.Notes,
		report.CreatedAt,
	)

	return err
}

func (r *reportRepository) GetByID(ctx context.Context, userID, id string) (*models.Report, error) {
	query := `
		SELECT r.id, r.user_id, r.analysis_id, r.report_type, r.report_data,
		       r.notes, r.created_at,
		       COALESCE(u.original_filename, ''), COALESCE(u.file_type, '')
		FROM reports r
		JOIN analyses a ON r.analysis_id = a.id
		LEFT JOIN uploads u ON a.upload_id = u.id
		WHERE r.id = $1 AND r.user_id = $2
	`

	report, err := r.scanReport(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (r *reportRepository) GetAll(ctx context.Context, userID string) ([]models.Report, error) {
	query := `
		SELECT r.id, r.user_id, r.analysis_id, r.report_type, r.report_data,
		       r.notes, r.created_at,
		       COALESCE(u.original_filename, ''), COALESCE(u.file_type, '')
		FROM reports r
		JOIN analyses a ON r.analysis_id = a.id
		LEFT JOIN uploads u ON a.upload_id = u.id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	return reports, rows.Err()
}

// UpdateNotes is the only permitted post-creation mutation; the snapshot in
// report_data stays untouched.
func (r *reportRepository) UpdateNotes(ctx context.Context, userID, id, notes string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET notes = $1
		WHERE id = $2 AND user_id = $3
	`, notes, id, userID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *reportRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID,
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

func (r *reportRepository) scanReport(row rowScanner) (*models.Report, error) {
	report := &models.Report{}
	var payload []byte

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.AnalysisID,
		&report.ReportType,
		&payload,
		&report.Notes,
		&report.CreatedAt,
		&report.OriginalFilename,
		&report.FileType,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payload, &report.ReportData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report data: %w", err)
	}

	return report, nil
}
