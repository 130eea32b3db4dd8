package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/picker-performance-service/internal/application"
	"github.com/wms-platform/picker-performance-service/internal/config"
	mongoRepo "github.com/wms-platform/picker-performance-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/picker-performance-service/internal/scheduler"
	"github.com/wms-platform/picker-performance-service/pkg/cloudevents"
	"github.com/wms-platform/picker-performance-service/pkg/kafka"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/metrics"
	"github.com/wms-platform/picker-performance-service/pkg/middleware"
	"github.com/wms-platform/picker-performance-service/pkg/mongodb"
	"github.com/wms-platform/picker-performance-service/pkg/outbox"
	"github.com/wms-platform/picker-performance-service/pkg/resilience"
	"github.com/wms-platform/picker-performance-service/pkg/tracing"
)

const serviceName = "picker-performance-service"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New(logging.DefaultConfig(serviceName)).WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := logging.New(cfg.LoggingOptions(serviceName))
	logger.SetDefault()
	logger.Info("Starting picker-performance-service API", "environment", cfg.Environment)

	ctx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	// Initialize OpenTelemetry tracing
	tracingConfig := cfg.TracingOptions(serviceName)
	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	// Initialize MongoDB with instrumentation
	mongoConfig := cfg.MongoDBOptions()
	mongoClient, err := mongodb.NewClient(ctx, mongoConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(context.Background())
	logger.Info("Connected to MongoDB", "database", mongoConfig.Database)

	// Initialize Kafka producer with instrumentation
	kafkaConfig := cfg.KafkaOptions()
	instrumentedProducer := kafka.NewInstrumentedProducer(kafka.NewProducer(kafkaConfig), m, logger)
	defer instrumentedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", kafkaConfig.Brokers)

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourcePickerPerformance)

	pickerRepo := mongoRepo.NewPickerRepository(instrumentedMongo, eventFactory)
	snapshotRepo := mongoRepo.NewSnapshotRepository(instrumentedMongo)

	// Initialize and start outbox publisher
	outboxPublisher := outbox.NewPublisher(
		pickerRepo.GetOutboxRepository(),
		instrumentedProducer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval:    cfg.OutboxPollInterval(),
			BatchSize:       cfg.Outbox.BatchSize,
			Retention:       24 * time.Hour,
			CleanupInterval: time.Hour,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	dashboardService := application.NewDashboardService(
		pickerRepo,
		snapshotRepo,
		logger,
		application.WithSchedule(cfg.ShiftSchedule()),
		application.WithMetrics(m),
	)

	if cfg.SeedDefaults {
		seeded, err := dashboardService.SeedDefaultPickers(ctx)
		if err != nil {
			logger.WithError(err).Warn("Failed to seed default pickers")
		} else if seeded > 0 {
			logger.Info("Seeded default pickers", "count", seeded)
		}
	}

	if cfg.Scheduler.Enabled {
		refreshConfig := scheduler.DefaultConfig()
		refreshConfig.Schedule = cfg.Scheduler.Schedule
		refreshConfig.Location = cfg.Location

		refresher := scheduler.NewRefresher(refreshConfig, dashboardService, instrumentedProducer, eventFactory, m, logger)
		if err := refresher.Start(ctx); err != nil {
			logger.WithError(err).Error("Failed to start dashboard refresher")
			os.Exit(1)
		}
		defer refresher.Stop()
	}

	// Setup Gin router with middleware
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.TracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Readiness pings run through a breaker
	mongoBreaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("mongodb-health"), logger.Logger, m)

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return mongoBreaker.Execute(checkCtx, instrumentedMongo.HealthCheck)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT secret not set, every caller is granted the dev role", "role", cfg.Auth.DevRole)
	}
	registerRoutes(router, dashboardService, logger, middleware.AuthConfig{
		Secret:  []byte(cfg.Auth.JWTSecret),
		Issuer:  cfg.Auth.Issuer,
		DevRole: cfg.Auth.DevRole,
	})

	// Start server
	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", cfg.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	cancelRun()

	logger.Info("Server stopped")
}
