package models

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

type StartAnalysisRequest struct {
	UploadID string `json:"upload_id"`
}

type GenerateReportRequest struct {
	AnalysisID string `json:"analysis_id"`
	ReportType string `json:"report_type"`
}

type UpdateReportRequest struct {
	Notes string `json:"notes"`
}

type MedicationRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Time      string `json:"time"`
}

type ProfileRequest struct {
	Age        *int     `json:"age"`
	Gender     *string  `json:"gender"`
	BloodGroup *string  `json:"blood_group"`
	Allergies  *string  `json:"allergies"`
	Weight     *float64 `json:"weight"`
	Height     *float64 `json:"height"`
}

// PredictionResponse mirrors the ML service response body.
type PredictionResponse struct {
	Prediction   int     `json:"prediction"`
	Probability  float64 `json:"probability"`
	RiskCategory string  `json:"risk_category"`
	Timestamp    string  `json:"timestamp,omitempty"`
}
