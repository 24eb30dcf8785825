package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

// MLClient talks to the external disease prediction service:
// POST {base}/predict/{disease} with a JSON feature object.
type MLClient interface {
	Predict(ctx context.Context, disease string, features json.RawMessage) (*models.PredictionResponse, error)
}

type mlClient struct {
	baseURL    string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewMLClient(baseURL string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) MLClient {
	return &mlClient{
		baseURL:    baseURL,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *mlClient) Predict(ctx context.Context, disease string, features json.RawMessage) (*models.PredictionResponse, error) {
	// Fail fast before any network call.
	if !models.ValidDiseaseType(disease) {
		return nil, models.E(models.ErrInvalidInput,
			"Invalid or missing disease type. Must be diabetes, heart, or kidney.")
	}
	// A missing URL is our misconfiguration, not the caller's fault.
	if c.baseURL == "" {
		return nil, models.E(models.ErrConfig,
			"Server Configuration Error: ML Service URL missing.")
	}

	url := fmt.Sprintf("%s/predict/%s", c.baseURL, disease)

	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Str("disease", disease).Msg("Retrying prediction call")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(features))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if isConnectionRefused(err) {
				// Distinguish "service down, try later" from bad input.
				lastErr = models.E(models.ErrServiceUnavailable,
					"ML Service is unavailable (Connection Refused). Please check if it is running.")
				continue
			}
			lastErr = fmt.Errorf("prediction request failed: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var prediction models.PredictionResponse
			if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("failed to decode prediction response: %w", err)
				continue
			}
			resp.Body.Close()

			c.logger.Debug().
				Str("disease", disease).
				Int("prediction", prediction.Prediction).
				Float64("probability", prediction.Probability).
				Str("risk_category", prediction.RiskCategory).
				Msg("Got prediction")

			return &prediction, nil
		}

		// Upstream answered with an error; pass it through without retrying.
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
	}

	return nil, lastErr
}

// UpstreamError carries a non-2xx ML service response so the handler can
// forward the upstream status and body.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ML service returned status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return models.ErrUpstream
}

// Only an actual refused connection gets the "Connection Refused" message;
// DNS failures, resets and the like surface as plain server errors.
func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
