package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, userID string, req models.ProfileRequest) (*models.Profile, error)
	// Clear removes the medical profile row but keeps the account.
	Clear(ctx context.Context, userID string) error
	// DeleteAccount removes the user and, through cascades, everything owned.
	DeleteAccount(ctx context.Context, userID string) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	logger      zerolog.Logger
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	// An absent profile is not an error; the caller gets an empty object.
	return profile, nil
}

func (s *profileService) Upsert(ctx context.Context, userID string, req models.ProfileRequest) (*models.Profile, error) {
	profile := &models.Profile{
		ID:         uuid.New().String(),
		UserID:     userID,
		Age:        req.Age,
		Gender:     req.Gender,
		BloodGroup: req.BloodGroup,
		Allergies:  req.Allergies,
		Weight:     req.Weight,
		Height:     req.Height,
	}

	saved, err := s.profileRepo.Upsert(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return saved, nil
}

func (s *profileService) Clear(ctx context.Context, userID string) error {
	if err := s.profileRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}

func (s *profileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Account deleted")
	return nil
}
