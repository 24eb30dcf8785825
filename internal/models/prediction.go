package models

import (
	"encoding/json"
	"time"
)

// Prediction is a persisted record of one synchronous call to the external
// disease prediction service.
type Prediction struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"user_id" db:"user_id"`
	DiseaseType  string          `json:"disease_type" db:"disease_type"`
	InputValues  json.RawMessage `json:"input_values" db:"input_values"`
	Prediction   int             `json:"prediction" db:"prediction"`
	Probability  float64         `json:"probability" db:"probability"`
	RiskCategory string          `json:"risk_category" db:"risk_category"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

const (
	DiseaseDiabetes = "diabetes"
	DiseaseHeart    = "heart"
	DiseaseKidney   = "kidney"
)

func ValidDiseaseType(d string) bool {
	switch d {
	case DiseaseDiabetes, DiseaseHeart, DiseaseKidney:
		return true
	}
	return false
}
