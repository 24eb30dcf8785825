package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/service"
	"github.com/DhruvR-16/ArogyaAI/internal/service/integration"
)

type authServiceFake struct{}

func (f *authServiceFake) Signup(_ context.Context, name, email, password string) (*models.AuthResponse, error) {
	if email == "taken@example.com" {
		return nil, models.E(models.ErrAlreadyExists, "User already exists")
	}
	return &models.AuthResponse{
		Message: "User registered successfully",
		Token:   "good-token",
		User:    &models.User{ID: "user-1", Name: name, Email: email},
	}, nil
}

func (f *authServiceFake) Login(_ context.Context, email, password string) (*models.AuthResponse, error) {
	if password != "secret123" {
		return nil, models.E(models.ErrInvalidInput, "Invalid credentials")
	}
	return &models.AuthResponse{
		Message: "Login successful",
		Token:   "good-token",
		User:    &models.User{ID: "user-1", Email: email},
	}, nil
}

func (f *authServiceFake) VerifyToken(token string) (*service.TokenClaims, error) {
	if token != "good-token" {
		return nil, models.E(models.ErrUnauthorized, "Invalid or expired token")
	}
	return &service.TokenClaims{UserID: "user-1", Email: "user@example.com"}, nil
}

type uploadServiceFake struct {
	registeredBy string
}

func (f *uploadServiceFake) Register(_ context.Context, userID, originalName, fileType, description string, fileBytes []byte) (*models.Upload, error) {
	if len(fileBytes) == 0 {
		return nil, models.E(models.ErrInvalidInput, "No file uploaded")
	}
	if originalName == "brokendisk.png" {
		return nil, models.E(models.ErrStorage, "Failed to store file")
	}
	f.registeredBy = userID
	return &models.Upload{ID: "upload-1", UserID: userID, OriginalFilename: originalName}, nil
}

func (f *uploadServiceFake) Get(_ context.Context, userID, id string) (*models.Upload, error) {
	if id != "upload-1" {
		return nil, models.E(models.ErrNotFound, "Upload not found")
	}
	return &models.Upload{ID: id, UserID: userID, OriginalFilename: "scan.png"}, nil
}

func (f *uploadServiceFake) List(_ context.Context, userID string) ([]models.Upload, error) {
	return []models.Upload{{ID: "upload-1", UserID: userID}}, nil
}

func (f *uploadServiceFake) Download(_ context.Context, userID, id string) (*models.Upload, io.ReadCloser, int64, error) {
	if id != "upload-1" {
		return nil, nil, 0, models.E(models.ErrNotFound, "Upload not found")
	}
	data := "imagedata"
	return &models.Upload{ID: id, OriginalFilename: "scan.png"},
		io.NopCloser(strings.NewReader(data)), int64(len(data)), nil
}

func (f *uploadServiceFake) Delete(_ context.Context, userID, id string) error {
	if id != "upload-1" {
		return models.E(models.ErrNotFound, "Upload not found")
	}
	return nil
}

type analysisServiceFake struct{}

func (f *analysisServiceFake) Start(_ context.Context, userID, uploadID string) (*models.Analysis, error) {
	if strings.TrimSpace(uploadID) == "" {
		return nil, models.E(models.ErrInvalidInput, "Upload ID is required")
	}
	if uploadID != "upload-1" {
		return nil, models.E(models.ErrNotFound, "Upload not found")
	}
	return &models.Analysis{ID: "analysis-1", UserID: userID, Status: "processing"}, nil
}

func (f *analysisServiceFake) Get(_ context.Context, userID, id string) (*models.Analysis, error) {
	if id != "analysis-1" {
		return nil, models.E(models.ErrNotFound, "Analysis not found")
	}
	return &models.Analysis{ID: id, UserID: userID, Status: "completed"}, nil
}

func (f *analysisServiceFake) List(_ context.Context, userID string) ([]models.Analysis, error) {
	return nil, nil
}

func (f *analysisServiceFake) Stats(_ context.Context, userID string) (*models.AnalysisStats, error) {
	return &models.AnalysisStats{Total: 2, Completed: 1, Processing: 1}, nil
}

type reportServiceFake struct{}

func (f *reportServiceFake) Generate(_ context.Context, userID, analysisID, reportType string) (*models.Report, error) {
	if analysisID == "" {
		return nil, models.E(models.ErrInvalidInput, "Analysis ID is required")
	}
	if analysisID == "processing-analysis" {
		return nil, models.E(models.ErrInvalidState, "Analysis not completed yet")
	}
	return &models.Report{ID: "report-1", UserID: userID, AnalysisID: analysisID}, nil
}

func (f *reportServiceFake) Get(_ context.Context, userID, id string) (*models.Report, error) {
	return nil, models.E(models.ErrNotFound, "Report not found")
}

func (f *reportServiceFake) List(_ context.Context, userID string) ([]models.Report, error) {
	return nil, nil
}

func (f *reportServiceFake) UpdateNotes(_ context.Context, userID, id, notes string) (*models.Report, error) {
	return &models.Report{ID: id, UserID: userID, Notes: notes}, nil
}

func (f *reportServiceFake) Delete(_ context.Context, userID, id string) error {
	return nil
}

type predictionServiceFake struct{}

func (f *predictionServiceFake) Predict(_ context.Context, userID, disease string, features json.RawMessage) (*models.Prediction, error) {
	switch disease {
	case "":
		return nil, models.E(models.ErrInvalidInput, "Invalid or missing disease type. Must be diabetes, heart, or kidney.")
	case "down":
		return nil, models.E(models.ErrServiceUnavailable, "ML Service is unavailable (Connection Refused). Please check if it is running.")
	case "unconfigured":
		return nil, models.E(models.ErrConfig, "Server Configuration Error: ML Service URL missing.")
	case "bad-features":
		return nil, &integration.UpstreamError{Status: 422, Body: []byte(`{"detail":"missing feature"}`)}
	}
	return &models.Prediction{ID: "prediction-1", UserID: userID, DiseaseType: disease, Prediction: 1, Probability: 0.8, RiskCategory: "High Risk"}, nil
}

func (f *predictionServiceFake) List(_ context.Context, userID string) ([]models.Prediction, error) {
	return nil, nil
}

type medicationServiceFake struct{}

func (f *medicationServiceFake) Add(_ context.Context, userID string, req models.MedicationRequest) (*models.Medication, error) {
	return &models.Medication{ID: "medication-1", UserID: userID, Name: req.Name}, nil
}

func (f *medicationServiceFake) List(_ context.Context, userID string) ([]models.Medication, error) {
	return nil, nil
}

func (f *medicationServiceFake) Update(_ context.Context, userID, id string, req models.MedicationRequest) (*models.Medication, error) {
	return nil, models.E(models.ErrNotFound, "Medication not found")
}

func (f *medicationServiceFake) Delete(_ context.Context, userID, id string) error {
	return nil
}

type profileServiceFake struct {
	accountDeleted bool
	cleared        bool
}

func (f *profileServiceFake) Get(_ context.Context, userID string) (*models.Profile, error) {
	return nil, nil
}

func (f *profileServiceFake) Upsert(_ context.Context, userID string, req models.ProfileRequest) (*models.Profile, error) {
	return &models.Profile{ID: "profile-1", UserID: userID, Age: req.Age}, nil
}

func (f *profileServiceFake) Clear(_ context.Context, userID string) error {
	f.cleared = true
	return nil
}

func (f *profileServiceFake) DeleteAccount(_ context.Context, userID string) error {
	f.accountDeleted = true
	return nil
}

type testRig struct {
	router  chi.Router
	uploads *uploadServiceFake
	profile *profileServiceFake
}

func newTestRig() *testRig {
	uploads := &uploadServiceFake{}
	profile := &profileServiceFake{}

	handler := NewHandler(
		&authServiceFake{},
		uploads,
		&analysisServiceFake{},
		&reportServiceFake{},
		&predictionServiceFake{},
		&medicationServiceFake{},
		profile,
		10<<20,
		nil,
		zerolog.Nop(),
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return &testRig{router: router, uploads: uploads, profile: profile}
}

func (rig *testRig) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	rig.router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodGet, "/api/uploads/", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = rig.do(http.MethodGet, "/api/uploads/", "expired-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupAndLogin(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodPost, "/api/auth/signup", "",
		jsonBody(t, models.SignupRequest{Name: "Asha", Email: "asha@example.com", Password: "secret123"}),
		"application/json")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"good-token"`)

	rec = rig.do(http.MethodPost, "/api/auth/signup", "",
		jsonBody(t, models.SignupRequest{Name: "Asha", Email: "taken@example.com", Password: "secret123"}),
		"application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"User already exists"}`, rec.Body.String())

	rec = rig.do(http.MethodPost, "/api/auth/login", "",
		jsonBody(t, models.LoginRequest{Email: "asha@example.com", Password: "wrong"}),
		"application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
}

func TestUploadMultipart(t *testing.T) {
	rig := newTestRig()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "scan.png")
	part.Write([]byte("imagedata"))
	writer.WriteField("fileType", models.FileTypeXRay)
	writer.Close()

	rec := rig.do(http.MethodPost, "/api/uploads/", "good-token", body, writer.FormDataContentType())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"File uploaded successfully"`)
	assert.Equal(t, "user-1", rig.uploads.registeredBy)
}

func TestUploadWithoutFile(t *testing.T) {
	rig := newTestRig()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	writer.WriteField("fileType", models.FileTypeXRay)
	writer.Close()

	rec := rig.do(http.MethodPost, "/api/uploads/", "good-token", body, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No file uploaded"}`, rec.Body.String())
}

func TestDownloadStreamsAttachment(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodGet, "/api/uploads/upload-1/download", "good-token", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "imagedata", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="scan.png"`)
}

func TestStartAnalysisValidation(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodPost, "/api/analyses/", "good-token",
		jsonBody(t, models.StartAnalysisRequest{}), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Upload ID is required"}`, rec.Body.String())

	rec = rig.do(http.MethodPost, "/api/analyses/", "good-token",
		jsonBody(t, models.StartAnalysisRequest{UploadID: "missing"}), "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Upload not found"}`, rec.Body.String())

	rec = rig.do(http.MethodPost, "/api/analyses/", "good-token",
		jsonBody(t, models.StartAnalysisRequest{UploadID: "upload-1"}), "application/json")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Analysis started"`)
}

func TestAnalysisStatsRouteNotShadowedByID(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodGet, "/api/analyses/stats", "good-token", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_analyses":2`)
}

func TestReportErrors(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodPost, "/api/reports/", "good-token",
		jsonBody(t, models.GenerateReportRequest{AnalysisID: "processing-analysis"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Analysis not completed yet"}`, rec.Body.String())

	rec = rig.do(http.MethodGet, "/api/reports/missing", "good-token", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Report not found"}`, rec.Body.String())
}

func TestPredictErrorMapping(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodPost, "/api/predict?disease=down", "good-token",
		strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Connection Refused")

	// Upstream model errors pass through status and body untouched.
	rec = rig.do(http.MethodPost, "/api/predict?disease=bad-features", "good-token",
		strings.NewReader(`{}`), "application/json")
	assert.Equal(t, 422, rec.Code)
	assert.JSONEq(t, `{"detail":"missing feature"}`, rec.Body.String())

	rec = rig.do(http.MethodPost, "/api/predict?disease=diabetes", "good-token",
		strings.NewReader(`{"glucose":120}`), "application/json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"risk_category":"High Risk"`)
}

func TestPredictMissingURLIsServerError(t *testing.T) {
	rig := newTestRig()

	// A misconfigured server is a 500 with its message, never the client's 400.
	rec := rig.do(http.MethodPost, "/api/predict?disease=unconfigured", "good-token",
		strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Server Configuration Error: ML Service URL missing."}`, rec.Body.String())
}

func TestUploadStorageFailureKeepsMessage(t *testing.T) {
	rig := newTestRig()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "brokendisk.png")
	part.Write([]byte("imagedata"))
	writer.Close()

	rec := rig.do(http.MethodPost, "/api/uploads/", "good-token", body, writer.FormDataContentType())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to store file"}`, rec.Body.String())
}

func TestProfileDeleteActions(t *testing.T) {
	rig := newTestRig()

	rec := rig.do(http.MethodDelete, "/api/profile/", "good-token", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rig.profile.cleared)
	assert.False(t, rig.profile.accountDeleted)

	rec = rig.do(http.MethodDelete, "/api/profile/?action=delete_account", "good-token", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rig.profile.accountDeleted)
}
