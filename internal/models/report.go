package models

import (
	"time"
)

type Report struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	AnalysisID string     `json:"analysis_id" db:"analysis_id"`
	ReportType string     `json:"report_type" db:"report_type"`
	ReportData ReportData `json:"report_data" db:"report_data"`
	Notes      string     `json:"notes" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`

	// Joined upload metadata for display.
	OriginalFilename string `json:"original_filename,omitempty" db:"original_filename"`
	FileType         string `json:"file_type,omitempty" db:"file_type"`
}

// ReportData is the denormalized snapshot captured at generation time.
// Everything except the report's Notes field is immutable after creation.
type ReportData struct {
	AnalysisID   string          `json:"analysis_id"`
	Filename     string          `json:"filename"`
	AnalysisDate *time.Time      `json:"analysis_date"`
	Results      AnalysisResults `json:"results"`
	ReportType   string          `json:"report_type"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

const ReportTypeSummary = "summary"
