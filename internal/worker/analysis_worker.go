package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
	"github.com/DhruvR-16/ArogyaAI/internal/service/analyzer"
	"github.com/DhruvR-16/ArogyaAI/internal/worker/queue"
)

type AnalysisWorker interface {
	Start(ctx context.Context) error
	Stop() error
	ProcessAnalysis(ctx context.Context, analysisID, fileType string) error
}

// AnalysisMetrics receives processing outcomes. A nil recorder disables
// reporting.
type AnalysisMetrics interface {
	RecordAnalysis(outcome string, duration time.Duration)
	RecordStaleRequeue()
	SetQueueDepth(depth int)
}

type AnalysisWorkerConfig struct {
	Exchange     string
	RoutingKey   string
	MaxAttempts  int
	StaleAfter   time.Duration
	ReapInterval time.Duration
}

type analysisWorker struct {
	workerPool    *WorkerPool
	queueConsumer queue.Consumer
	publisher     queue.Publisher
	analysisRepo  repository.AnalysisRepository
	screening     analyzer.ScreeningAnalyzer
	metrics       AnalysisMetrics
	logger        zerolog.Logger
	config        AnalysisWorkerConfig
	stopReaper    context.CancelFunc
	dispatchDone  chan struct{}
}

func NewAnalysisWorker(
	workerPool *WorkerPool,
	queueConsumer queue.Consumer,
	publisher queue.Publisher,
	analysisRepo repository.AnalysisRepository,
	screening analyzer.ScreeningAnalyzer,
	metrics AnalysisMetrics,
	logger zerolog.Logger,
	config AnalysisWorkerConfig,
) AnalysisWorker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = 10 * time.Minute
	}
	if config.ReapInterval <= 0 {
		config.ReapInterval = 5 * time.Minute
	}
	return &analysisWorker{
		workerPool:    workerPool,
		queueConsumer: queueConsumer,
		publisher:     publisher,
		analysisRepo:  analysisRepo,
		screening:     screening,
		metrics:       metrics,
		logger:        logger,
		config:        config,
	}
}

func (w *analysisWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting analysis worker...")

	if err := w.workerPool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	msgs, err := w.queueConsumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	w.dispatchDone = make(chan struct{})
	go func() {
		defer close(w.dispatchDone)
		w.processMessages(ctx, msgs)
	}()

	reaperCtx, cancel := context.WithCancel(ctx)
	w.stopReaper = cancel
	go w.reapStale(reaperCtx)

	if w.metrics != nil {
		go w.reportQueueDepth(reaperCtx)
	}

	w.logger.Info().Msg("Analysis worker started")
	return nil
}

func (w *analysisWorker) Stop() error {
	w.logger.Info().Msg("Stopping analysis worker...")

	if w.stopReaper != nil {
		w.stopReaper()
	}

	// Stop deliveries first and wait for the dispatch loop to drain, so no
	// message is submitted to the pool after its task channel closes.
	if err := w.queueConsumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}
	if w.dispatchDone != nil {
		<-w.dispatchDone
	}

	if err := w.workerPool.Stop(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}

	return nil
}

func (w *analysisWorker) processMessages(ctx context.Context, msgs <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			w.workerPool.Submit(func() {
				if err := w.processMessage(ctx, msg); err != nil {
					w.logger.Error().Err(err).Msg("Failed to process message")

					if isPermanentError(err) {
						if ackErr := msg.Ack(false); ackErr != nil {
							w.logger.Error().Err(ackErr).Msg("Failed to ack message")
						}
						return
					}

					if nackErr := msg.Nack(false, true); nackErr != nil {
						w.logger.Error().Err(nackErr).Msg("Failed to nack message")
					}
					return
				}

				if err := msg.Ack(false); err != nil {
					w.logger.Error().Err(err).Msg("Failed to ack message")
				}
			})
		}
	}
}

func (w *analysisWorker) processMessage(ctx context.Context, msg queue.Message) error {
	var event models.AnalysisRequestedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return permanent(fmt.Errorf("failed to unmarshal event: %w", err))
	}

	if strings.TrimSpace(event.AnalysisID) == "" {
		return permanent(errors.New("empty analysis_id"))
	}

	w.logger.Info().
		Str("analysis_id", event.AnalysisID).
		Str("upload_id", event.UploadID).
		Str("user_id", event.UserID).
		Msg("Processing analysis")

	return w.ProcessAnalysis(ctx, event.AnalysisID, event.FileType)
}

// ProcessAnalysis drives one analysis to a terminal state. Only a row still
// in `processing` is mutated, so redelivered messages are no-ops.
func (w *analysisWorker) ProcessAnalysis(ctx context.Context, analysisID, fileType string) error {
	started := time.Now()

	analysis, err := w.analysisRepo.GetByIDAnyOwner(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("failed to load analysis: %w", err)
	}
	if analysis == nil {
		return permanent(fmt.Errorf("analysis %s not found", analysisID))
	}

	if models.AnalysisStatus(analysis.Status).Terminal() {
		w.logger.Warn().
			Str("analysis_id", analysisID).
			Str("status", analysis.Status).
			Msg("Analysis already terminal, skipping")
		return nil
	}

	results, err := w.screening.Analyze(ctx, fileType)
	if err != nil {
		if _, failErr := w.analysisRepo.Fail(ctx, analysisID); failErr != nil {
			w.logger.Error().Err(failErr).
				Str("analysis_id", analysisID).
				Msg("Failed to mark analysis as failed")
		}
		if w.metrics != nil {
			w.metrics.RecordAnalysis("failed", time.Since(started))
		}
		return fmt.Errorf("screening failed: %w", err)
	}

	transitioned, err := w.analysisRepo.Complete(ctx, analysisID, results, time.Now())
	if err != nil {
		return fmt.Errorf("failed to complete analysis: %w", err)
	}
	if !transitioned {
		w.logger.Warn().
			Str("analysis_id", analysisID).
			Msg("Analysis left processing concurrently, completion skipped")
		return nil
	}

	if w.metrics != nil {
		w.metrics.RecordAnalysis("completed", time.Since(started))
	}

	w.logger.Info().
		Str("analysis_id", analysisID).
		Str("risk_level", results.RiskLevel).
		Msg("Analysis completed")

	return nil
}

func (w *analysisWorker) reportQueueDepth(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.metrics.SetQueueDepth(w.workerPool.QueueLength())
		}
	}
}

// reapStale requeues analyses stuck in `processing` beyond the staleness
// threshold, typically after a crash between start and completion. A row that
// exhausts its attempts is marked failed instead of cycling forever.
func (w *analysisWorker) reapStale(ctx context.Context) {
	w.runReapPass(ctx)

	ticker := time.NewTicker(w.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runReapPass(ctx)
		}
	}
}

func (w *analysisWorker) runReapPass(ctx context.Context) {
	cutoff := time.Now().Add(-w.config.StaleAfter)

	stale, err := w.analysisRepo.GetStale(ctx, cutoff, 100)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list stale analyses")
		return
	}

	for _, analysis := range stale {
		attempts, err := w.analysisRepo.IncrementAttempts(ctx, analysis.ID)
		if err != nil {
			w.logger.Error().Err(err).
				Str("analysis_id", analysis.ID).
				Msg("Failed to bump attempts on stale analysis")
			continue
		}

		if attempts >= w.config.MaxAttempts {
			if _, err := w.analysisRepo.Fail(ctx, analysis.ID); err != nil {
				w.logger.Error().Err(err).
					Str("analysis_id", analysis.ID).
					Msg("Failed to fail exhausted analysis")
			} else {
				w.logger.Warn().
					Str("analysis_id", analysis.ID).
					Int("attempts", attempts).
					Msg("Stale analysis exhausted attempts, marked failed")
			}
			continue
		}

		uploadID := ""
		if analysis.UploadID != nil {
			uploadID = *analysis.UploadID
		}

		event := models.AnalysisRequestedEvent{
			AnalysisID: analysis.ID,
			UploadID:   uploadID,
			UserID:     analysis.UserID,
			FileType:   analysis.FileType,
			Timestamp:  time.Now().Unix(),
		}
		body, err := json.Marshal(event)
		if err != nil {
			w.logger.Error().Err(err).Str("analysis_id", analysis.ID).Msg("Failed to marshal requeue event")
			continue
		}

		if err := w.publisher.Publish(ctx, w.config.Exchange, w.config.RoutingKey, body); err != nil {
			w.logger.Error().Err(err).
				Str("analysis_id", analysis.ID).
				Msg("Failed to requeue stale analysis")
			continue
		}

		if w.metrics != nil {
			w.metrics.RecordStaleRequeue()
		}

		w.logger.Info().
			Str("analysis_id", analysis.ID).
			Int("attempts", attempts).
			Msg("Stale analysis requeued")
	}
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

func isPermanentError(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
