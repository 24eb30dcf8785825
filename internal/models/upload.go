package models

import (
	"time"
)

type Upload struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	Filename         string    `json:"filename" db:"filename"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	StorageBucket    string    `json:"-" db:"storage_bucket"`
	StoragePath      string    `json:"file_path" db:"storage_path"`
	FileType         string    `json:"file_type" db:"file_type"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	Description      string    `json:"description" db:"description"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

type UploadStatus string

const (
	UploadStatusUploaded  UploadStatus = "uploaded"
	UploadStatusAnalyzing UploadStatus = "analyzing"
	UploadStatusAnalyzed  UploadStatus = "analyzed"
)

func (us UploadStatus) String() string {
	return string(us)
}

// File type labels accepted on upload. Anything else falls back to
// FileTypeMedicalImage, mirroring the registry default.
const (
	FileTypeMedicalImage = "medical_image"
	FileTypeXRay         = "xray"
	FileTypeCTScan       = "ct_scan"
	FileTypeMRI          = "mri"
	FileTypeLabReport    = "lab_report"
	FileTypeDocument     = "document"
)

func ValidFileType(t string) bool {
	switch t {
	case FileTypeMedicalImage, FileTypeXRay, FileTypeCTScan, FileTypeMRI, FileTypeLabReport, FileTypeDocument:
		return true
	}
	return false
}
