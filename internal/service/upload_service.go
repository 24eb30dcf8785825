package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
)

type UploadService interface {
	Register(ctx context.Context, userID, originalName, fileType, description string, fileBytes []byte) (*models.Upload, error)
	Get(ctx context.Context, userID, id string) (*models.Upload, error)
	List(ctx context.Context, userID string) ([]models.Upload, error)
	Download(ctx context.Context, userID, id string) (*models.Upload, io.ReadCloser, int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type UploadConfig struct {
	MaxUploadSize int64
	Bucket        string
	AllowedTypes  []string
}

type uploadService struct {
	uploadRepo  repository.UploadRepository
	storageRepo repository.StorageRepository
	logger      zerolog.Logger
	config      UploadConfig
}

func NewUploadService(
	uploadRepo repository.UploadRepository,
	storageRepo repository.StorageRepository,
	logger zerolog.Logger,
	config UploadConfig,
) UploadService {
	return &uploadService{
		uploadRepo:  uploadRepo,
		storageRepo: storageRepo,
		logger:      logger,
		config:      config,
	}
}

func (s *uploadService) Register(ctx context.Context, userID, originalName, fileType, description string, fileBytes []byte) (*models.Upload, error) {
	if len(fileBytes) == 0 {
		return nil, models.E(models.ErrInvalidInput, "No file uploaded")
	}

	if s.config.MaxUploadSize > 0 && int64(len(fileBytes)) > s.config.MaxUploadSize {
		return nil, models.E(models.ErrInvalidInput,
			fmt.Sprintf("File size exceeds limit of %d bytes", s.config.MaxUploadSize))
	}

	if !s.isAllowedType(originalName) {
		return nil, models.E(models.ErrInvalidInput,
			"Invalid file type. Only images, PDFs, and documents are allowed.")
	}

	if !models.ValidFileType(fileType) {
		fileType = models.FileTypeMedicalImage
	}

	storedName := s.generateUniqueFileName(originalName)
	storagePath := s.generateStoragePath(storedName)

	// Blob first, metadata second. The blob is compensating-deleted if the
	// metadata insert fails, so a row never points at missing bytes.
	if err := s.storageRepo.UploadFile(
		ctx,
		s.config.Bucket,
		storagePath,
		bytes.NewReader(fileBytes),
		int64(len(fileBytes)),
	); err != nil {
		return nil, models.E(models.ErrStorage, "Failed to store file")
	}

	upload := &models.Upload{
		ID:               uuid.New().String(),
		UserID:           userID,
		Filename:         storedName,
		OriginalFilename: originalName,
		StorageBucket:    s.config.Bucket,
		StoragePath:      storagePath,
		FileType:         fileType,
		FileSize:         int64(len(fileBytes)),
		Description:      description,
		Status:           models.UploadStatusUploaded.String(),
		CreatedAt:        time.Now(),
	}

	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		if delErr := s.storageRepo.DeleteFile(ctx, s.config.Bucket, storagePath); delErr != nil {
			s.logger.Error().Err(delErr).
				Str("path", storagePath).
				Msg("Failed to clean up blob after metadata failure")
		}
		return nil, fmt.Errorf("failed to save upload metadata: %w", err)
	}

	s.logger.Info().
		Str("upload_id", upload.ID).
		Str("user_id", userID).
		Str("original_name", originalName).
		Str("file_type", fileType).
		Int64("size", upload.FileSize).
		Msg("File uploaded")

	return upload, nil
}

func (s *uploadService) Get(ctx context.Context, userID, id string) (*models.Upload, error) {
	upload, err := s.uploadRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	if upload == nil {
		return nil, models.E(models.ErrNotFound, "Upload not found")
	}
	return upload, nil
}

func (s *uploadService) List(ctx context.Context, userID string) ([]models.Upload, error) {
	return s.uploadRepo.GetAll(ctx, userID)
}

func (s *uploadService) Download(ctx context.Context, userID, id string) (*models.Upload, io.ReadCloser, int64, error) {
	upload, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, 0, err
	}

	reader, size, err := s.storageRepo.DownloadFile(ctx, upload.StorageBucket, upload.StoragePath)
	if err != nil {
		return nil, nil, 0, models.E(models.ErrStorage, "Failed to read file")
	}

	return upload, reader, size, nil
}

// Delete removes the metadata row; blob removal is best effort and never
// blocks the deletion.
func (s *uploadService) Delete(ctx context.Context, userID, id string) error {
	upload, err := s.uploadRepo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	if upload == nil {
		return models.E(models.ErrNotFound, "Upload not found")
	}

	if err := s.storageRepo.DeleteFile(ctx, upload.StorageBucket, upload.StoragePath); err != nil {
		s.logger.Warn().Err(err).
			Str("upload_id", id).
			Str("path", upload.StoragePath).
			Msg("Failed to delete blob; metadata row already removed")
	}

	return nil
}

func (s *uploadService) isAllowedType(fileName string) bool {
	if len(s.config.AllowedTypes) == 0 {
		return true
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range s.config.AllowedTypes {
		if ext == allowed {
			return true
		}
	}

	return false
}

func (s *uploadService) generateUniqueFileName(originalName string) string {
	ext := filepath.Ext(originalName)
	name := strings.TrimSuffix(originalName, ext)

	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "..", "")

	return fmt.Sprintf("%s_%d_%s%s", name, time.Now().UnixNano(), uuid.New().String()[:8], ext)
}

func (s *uploadService) generateStoragePath(fileName string) string {
	now := time.Now()
	return fmt.Sprintf("%d/%02d/%02d/%s", now.Year(), now.Month(), now.Day(), fileName)
}
