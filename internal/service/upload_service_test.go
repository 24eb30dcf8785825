package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type storageRepoFake struct {
	objects   map[string][]byte
	uploadErr error
	deleted   []string
}

func newStorageRepoFake() *storageRepoFake {
	return &storageRepoFake{objects: map[string][]byte{}}
}

func (f *storageRepoFake) UploadFile(_ context.Context, bucket, objectName string, file io.Reader, _ int64) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+objectName] = data
	return nil
}

func (f *storageRepoFake) DownloadFile(_ context.Context, bucket, objectName string) (io.ReadCloser, int64, error) {
	data, ok := f.objects[bucket+"/"+objectName]
	if !ok {
		return nil, 0, errors.New("object not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), int64(len(data)), nil
}

func (f *storageRepoFake) DeleteFile(_ context.Context, bucket, objectName string) error {
	key := bucket + "/" + objectName
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func newUploadServiceForTest(uploadRepo *uploadRepoFake, storage *storageRepoFake) UploadService {
	return NewUploadService(uploadRepo, storage, zerolog.Nop(), UploadConfig{
		MaxUploadSize: 1024,
		Bucket:        "medical-uploads",
		AllowedTypes:  []string{".jpeg", ".jpg", ".png", ".pdf", ".doc", ".docx", ".dicom"},
	})
}

func TestRegisterRejectsEmptyFile(t *testing.T) {
	svc := newUploadServiceForTest(newUploadRepoFake(), newStorageRepoFake())

	_, err := svc.Register(context.Background(), "user-1", "scan.png", "", "", nil)
	if err == nil || err.Error() != "No file uploaded" {
		t.Fatalf("expected No file uploaded, got %v", err)
	}
}

func TestRegisterRejectsOversizedFile(t *testing.T) {
	svc := newUploadServiceForTest(newUploadRepoFake(), newStorageRepoFake())

	_, err := svc.Register(context.Background(), "user-1", "scan.png", "", "", make([]byte, 2048))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegisterRejectsDisallowedExtension(t *testing.T) {
	svc := newUploadServiceForTest(newUploadRepoFake(), newStorageRepoFake())

	_, err := svc.Register(context.Background(), "user-1", "malware.exe", "", "", []byte("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "Invalid file type. Only images, PDFs, and documents are allowed." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRegisterDefaultsUnknownFileType(t *testing.T) {
	uploadRepo := newUploadRepoFake()
	svc := newUploadServiceForTest(uploadRepo, newStorageRepoFake())

	upload, err := svc.Register(context.Background(), "user-1", "scan.png", "hologram", "", []byte("data"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if upload.FileType != models.FileTypeMedicalImage {
		t.Fatalf("file type = %q, want fallback %q", upload.FileType, models.FileTypeMedicalImage)
	}
	if upload.Status != models.UploadStatusUploaded.String() {
		t.Fatalf("status = %q", upload.Status)
	}
}

func TestRegisterStoresBlobAndMetadata(t *testing.T) {
	uploadRepo := newUploadRepoFake()
	storage := newStorageRepoFake()
	svc := newUploadServiceForTest(uploadRepo, storage)

	upload, err := svc.Register(context.Background(), "user-1", "chest x ray.png", models.FileTypeXRay, "annual checkup", []byte("imagedata"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, ok := storage.objects["medical-uploads/"+upload.StoragePath]; !ok {
		t.Fatalf("blob missing at %q", upload.StoragePath)
	}
	if strings.Contains(upload.Filename, " ") {
		t.Fatalf("stored name not sanitized: %q", upload.Filename)
	}
	if upload.OriginalFilename != "chest x ray.png" {
		t.Fatalf("original name = %q", upload.OriginalFilename)
	}
	if stored, _ := uploadRepo.GetByID(context.Background(), "user-1", upload.ID); stored == nil {
		t.Fatalf("metadata row missing")
	}
}

func TestDownloadStreamsStoredBytes(t *testing.T) {
	uploadRepo := newUploadRepoFake()
	storage := newStorageRepoFake()
	svc := newUploadServiceForTest(uploadRepo, storage)

	upload, err := svc.Register(context.Background(), "user-1", "scan.png", models.FileTypeXRay, "", []byte("imagedata"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, reader, size, err := svc.Download(context.Background(), "user-1", upload.ID)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "imagedata" || size != int64(len(data)) {
		t.Fatalf("got %q (size %d)", data, size)
	}
	if got.ID != upload.ID {
		t.Fatalf("returned upload %q, want %q", got.ID, upload.ID)
	}
}

func TestDeleteRemovesBlobBestEffort(t *testing.T) {
	uploadRepo := newUploadRepoFake()
	storage := newStorageRepoFake()
	svc := newUploadServiceForTest(uploadRepo, storage)

	upload, err := svc.Register(context.Background(), "user-1", "scan.png", models.FileTypeXRay, "", []byte("imagedata"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", upload.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(storage.deleted) != 1 {
		t.Fatalf("expected blob delete, got %v", storage.deleted)
	}

	if err := svc.Delete(context.Background(), "user-1", upload.ID); err == nil || err.Error() != "Upload not found" {
		t.Fatalf("expected Upload not found, got %v", err)
	}
}
