package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/DhruvR-16/ArogyaAI/internal/config"
	"github.com/DhruvR-16/ArogyaAI/internal/delivery/httpd"
	"github.com/DhruvR-16/ArogyaAI/internal/metrics"
	appmw "github.com/DhruvR-16/ArogyaAI/internal/middleware"
	"github.com/DhruvR-16/ArogyaAI/internal/repository"
	"github.com/DhruvR-16/ArogyaAI/internal/service"
	"github.com/DhruvR-16/ArogyaAI/internal/service/analyzer"
	"github.com/DhruvR-16/ArogyaAI/internal/service/integration"
	"github.com/DhruvR-16/ArogyaAI/internal/worker"
	"github.com/DhruvR-16/ArogyaAI/internal/worker/queue"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type App struct {
	server         *http.Server
	logger         zerolog.Logger
	config         *config.Config
	db             *sql.DB
	analysisWorker worker.AnalysisWorker
	rabbitMQRepo   repository.RabbitMQRepository
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	rabbitMQRepo, err := repository.NewRabbitMQRepository(cfg.RabbitMQ.URL, log)
	if err != nil {
		return nil, err
	}

	if err := rabbitMQRepo.SetupQueue(
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.RoutingKey,
	); err != nil {
		return nil, err
	}

	rabbitMQPublisher := queue.NewRabbitMQPublisher(rabbitMQRepo.Channel(), log)
	rabbitMQConsumer := queue.NewRabbitMQConsumer(
		rabbitMQRepo.Channel(),
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.ConsumerTag,
		cfg.RabbitMQ.PrefetchCount,
		log,
	)

	storageRepo, err := repository.NewMinIORepository(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.Region,
		cfg.Storage.UseSSL,
		cfg.Storage.ConnectTimeout,
		log,
	)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db, log)
	uploadRepo := repository.NewUploadRepository(db, log)
	analysisRepo := repository.NewAnalysisRepository(db, log)
	reportRepo := repository.NewReportRepository(db, log)
	predictionRepo := repository.NewPredictionRepository(db, log)
	medicationRepo := repository.NewMedicationRepository(db, log)
	profileRepo := repository.NewProfileRepository(db, log)

	mlClient := integration.NewMLClient(
		cfg.ML.URL,
		cfg.ML.Timeout,
		cfg.ML.RetryCount,
		cfg.ML.RetryDelay,
		log,
	)

	authService := service.NewAuthService(userRepo, log, service.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	uploadService := service.NewUploadService(uploadRepo, storageRepo, log, service.UploadConfig{
		MaxUploadSize: cfg.Upload.MaxUploadSize,
		Bucket:        cfg.Storage.Bucket,
		AllowedTypes:  cfg.Upload.AllowedTypes,
	})

	analysisService := service.NewAnalysisService(
		analysisRepo,
		uploadRepo,
		rabbitMQPublisher,
		log,
		service.AnalysisQueueConfig{
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
		},
	)

	reportService := service.NewReportService(reportRepo, analysisRepo, log)
	predictionService := service.NewPredictionService(predictionRepo, mlClient, log)
	medicationService := service.NewMedicationService(medicationRepo, log)
	profileService := service.NewProfileService(profileRepo, userRepo, log)

	screening := analyzer.NewScreeningAnalyzer(log, analyzer.ScreeningConfig{
		SimulatedLatency: cfg.Worker.SimulatedLatency,
	})

	serverMetrics := metrics.NewServerMetrics("arogyaai")

	workerPool := worker.NewWorkerPool(cfg.Worker.MaxWorkers, log)

	analysisWorker := worker.NewAnalysisWorker(
		workerPool,
		rabbitMQConsumer,
		rabbitMQPublisher,
		analysisRepo,
		screening,
		serverMetrics,
		log,
		worker.AnalysisWorkerConfig{
			Exchange:     cfg.RabbitMQ.Exchange,
			RoutingKey:   cfg.RabbitMQ.RoutingKey,
			MaxAttempts:  cfg.Worker.MaxAttempts,
			StaleAfter:   cfg.Worker.StaleAfter,
			ReapInterval: cfg.Worker.ReapInterval,
		},
	)

	readiness := func(ctx context.Context) error {
		return db.PingContext(ctx)
	}

	handler := httpd.NewHandler(
		authService,
		uploadService,
		analysisService,
		reportService,
		predictionService,
		medicationService,
		profileService,
		cfg.Upload.MaxUploadSize,
		readiness,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appmw.RequestLogger(log))
	router.Use(appmw.Recovery(log))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(serverMetrics.Middleware)

	router.Use(appmw.NewCORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
		cfg.CORS.ExposedHeaders,
		cfg.CORS.AllowCredentials,
		cfg.CORS.MaxAge,
	))

	router.Method(http.MethodGet, "/metrics", serverMetrics.Handler())
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:         server,
		logger:         log,
		config:         cfg,
		db:             db,
		analysisWorker: analysisWorker,
		rabbitMQRepo:   rabbitMQRepo,
	}, nil
}

func (a *App) Run() error {
	ctx := context.Background()
	if err := a.analysisWorker.Start(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start analysis worker")
		return err
	}

	a.logger.Info().Msgf("Starting server on %s", a.config.Server.Address)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down...")

	if err := a.analysisWorker.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop analysis worker")
	}

	if a.rabbitMQRepo != nil {
		if err := a.rabbitMQRepo.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Server stopped")
	return nil
}
