package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Profile struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Age        *int      `json:"age" db:"age"`
	Gender     *string   `json:"gender" db:"gender"`
	BloodGroup *string   `json:"blood_group" db:"blood_group"`
	Allergies  *string   `json:"allergies" db:"allergies"`
	Weight     *float64  `json:"weight" db:"weight"`
	Height     *float64  `json:"height" db:"height"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type Medication struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Dosage    string    `json:"dosage" db:"dosage"`
	Frequency string    `json:"frequency" db:"frequency"`
	Time      string    `json:"time" db:"time_of_day"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
