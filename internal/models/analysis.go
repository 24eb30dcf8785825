package models

import (
	"encoding/json"
	"time"
)

type Analysis struct {
	ID          string           `json:"id" db:"id"`
	UserID      string           `json:"user_id" db:"user_id"`
	UploadID    *string          `json:"upload_id" db:"upload_id"`
	Status      string           `json:"status" db:"status"`
	Results     *AnalysisResults `json:"results" db:"results"`
	Attempts    int              `json:"-" db:"attempts"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`

	// Joined upload metadata, populated on reads for display purposes.
	OriginalFilename string `json:"original_filename,omitempty" db:"original_filename"`
	FileType         string `json:"file_type,omitempty" db:"file_type"`
}

type AnalysisStatus string

const (
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

func (as AnalysisStatus) String() string {
	return string(as)
}

// Terminal reports whether no further transition is allowed out of the status.
func (as AnalysisStatus) Terminal() bool {
	return as == AnalysisStatusCompleted || as == AnalysisStatusFailed
}

// CanTransition enforces the processing -> {completed, failed} machine.
func (as AnalysisStatus) CanTransition(to AnalysisStatus) bool {
	return as == AnalysisStatusProcessing && to.Terminal()
}

// AnalysisResults is the typed result payload stored in the analyses row.
// Raw keeps any upstream fields that do not fit the known shape.
type AnalysisResults struct {
	Diseases        []DiseaseConfidence `json:"diseases"`
	Recommendations []string            `json:"recommendations"`
	RiskLevel       string              `json:"risk_level"`
	Raw             json.RawMessage     `json:"raw,omitempty"`
}

type DiseaseConfidence struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type AnalysisStats struct {
	Total      int64 `json:"total_analyses"`
	Completed  int64 `json:"completed"`
	Processing int64 `json:"processing"`
	Failed     int64 `json:"failed"`
}
