package models

// AnalysisRequestedEvent is the queue message published when a user starts an
// analysis. The worker picks it up and drives the analysis to a terminal state.
type AnalysisRequestedEvent struct {
	AnalysisID string `json:"analysis_id"`
	UploadID   string `json:"upload_id"`
	UserID     string `json:"user_id"`
	FileType   string `json:"file_type"`
	Timestamp  int64  `json:"timestamp"`
}
