package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
)

type MedicationService interface {
	Add(ctx context.Context, userID string, req models.MedicationRequest) (*models.Medication, error)
	List(ctx context.Context, userID string) ([]models.Medication, error)
	Update(ctx context.Context, userID, id string, req models.MedicationRequest) (*models.Medication, error)
	Delete(ctx context.Context, userID, id string) error
}

type medicationService struct {
	medicationRepo repository.MedicationRepository
	logger         zerolog.Logger
}

func NewMedicationService(medicationRepo repository.MedicationRepository, logger zerolog.Logger) MedicationService {
	return &medicationService{
		medicationRepo: medicationRepo,
		logger:         logger,
	}
}

func (s *medicationService) Add(ctx context.Context, userID string, req models.MedicationRequest) (*models.Medication, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, models.E(models.ErrInvalidInput, "Medication name is required")
	}

	now := time.Now()
	medication := &models.Medication{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		Time:      req.Time,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.medicationRepo.Create(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to add medication: %w", err)
	}

	return medication, nil
}

func (s *medicationService) List(ctx context.Context, userID string) ([]models.Medication, error) {
	return s.medicationRepo.GetAll(ctx, userID)
}

func (s *medicationService) Update(ctx context.Context, userID, id string, req models.MedicationRequest) (*models.Medication, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, models.E(models.ErrInvalidInput, "Medication name is required")
	}

	medication := &models.Medication{
		ID:        id,
		UserID:    userID,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		Time:      req.Time,
		UpdatedAt: time.Now(),
	}

	updated, err := s.medicationRepo.Update(ctx, medication)
	if err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	if !updated {
		return nil, models.E(models.ErrNotFound, "Medication not found")
	}

	return medication, nil
}

func (s *medicationService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.medicationRepo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	if !deleted {
		return models.E(models.ErrNotFound, "Medication not found")
	}
	return nil
}
