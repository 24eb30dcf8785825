package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

func TestPredictRejectsInvalidDiseaseBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second, 0, 0, zerolog.Nop())

	_, err := client.Predict(context.Background(), "covid", json.RawMessage(`{}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err.Error() != "Invalid or missing disease type. Must be diabetes, heart, or kidney." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if called {
		t.Fatalf("server should not have been called")
	}
}

func TestPredictRequiresConfiguredURL(t *testing.T) {
	client := NewMLClient("", time.Second, 0, 0, zerolog.Nop())

	_, err := client.Predict(context.Background(), models.DiseaseDiabetes, json.RawMessage(`{}`))
	if err == nil || err.Error() != "Server Configuration Error: ML Service URL missing." {
		t.Fatalf("expected configuration error, got %v", err)
	}
	// Our misconfiguration must not be reported as the caller's bad input.
	if !errors.Is(err, models.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("missing URL must not be tagged as invalid input")
	}
}

func TestConnectionRefusedDetection(t *testing.T) {
	refused := &net.OpError{Op: "dial", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}
	if !isConnectionRefused(refused) {
		t.Fatalf("ECONNREFUSED not detected")
	}

	// Other transport failures must not claim "Connection Refused".
	for _, err := range []error{
		&net.OpError{Op: "read", Err: syscall.ECONNRESET},
		&net.DNSError{Err: "no such host", Name: "ml.invalid"},
	} {
		if isConnectionRefused(err) {
			t.Fatalf("%v misreported as connection refused", err)
		}
	}
}

func TestPredictConnectionRefused(t *testing.T) {
	// A closed server guarantees a refused connection on a real port.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewMLClient(url, time.Second, 0, 0, zerolog.Nop())

	_, err := client.Predict(context.Background(), models.DiseaseHeart, json.RawMessage(`{}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, models.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if err.Error() != "ML Service is unavailable (Connection Refused). Please check if it is running." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPredictPassesThroughUpstreamError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"missing feature glucose"}`))
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second, 3, time.Millisecond, zerolog.Nop())

	_, err := client.Predict(context.Background(), models.DiseaseDiabetes, json.RawMessage(`{}`))
	if err == nil {
		t.Fatalf("expected error")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", upstream.Status)
	}
	if string(upstream.Body) != `{"detail":"missing feature glucose"}` {
		t.Fatalf("body = %q", upstream.Body)
	}
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("expected ErrUpstream kind")
	}
	if attempts != 1 {
		t.Fatalf("upstream errors must not be retried, got %d attempts", attempts)
	}
}

func TestPredictDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict/kidney" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		json.NewEncoder(w).Encode(models.PredictionResponse{
			Prediction:   1,
			Probability:  0.82,
			RiskCategory: "High Risk",
		})
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second, 0, 0, zerolog.Nop())

	resp, err := client.Predict(context.Background(), models.DiseaseKidney, json.RawMessage(`{"age":60}`))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if resp.Prediction != 1 || resp.Probability != 0.82 || resp.RiskCategory != "High Risk" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
