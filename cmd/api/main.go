package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend/config"
	_ "portfolio-backend/docs" // Important for Swagger
	"portfolio-backend/internal/content"
	v1 "portfolio-backend/internal/delivery/http/v1"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/postgres"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/database"
	"portfolio-backend/pkg/email"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/metrics"
	"portfolio-backend/pkg/redis"
	"portfolio-backend/pkg/security"
	"portfolio-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title           Portfolio Backend API
// @version         1.0
// @description     Contact form relay and portfolio content for the personal site.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Loggers
	logger.Init()
	events := security.InitSecurityLogger("portfolio-backend", cfg.Environment)
	defer events.Sync()
	logger.Log.Info("Starting portfolio backend", "port", cfg.Port, "env", cfg.Environment)

	ctx := context.Background()

	// 3. Setup Redis (optional, rate limiting falls back to memory)
	if err := redis.Initialize(ctx, redis.Config{
		URL:      cfg.UpstashRedisURL,
		Password: cfg.UpstashRedisPassword,
	}); err != nil && !errors.Is(err, redis.ErrNotConfigured) {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 4. Setup Database (optional audit log)
	var attempts domain.ContactAttemptRepository
	var db usecase.Pinger
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		repo := postgres.NewContactAttemptRepository(dbPool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Log.Error("Failed to prepare contact_attempts table", "error", err)
			os.Exit(1)
		}
		attempts = repo
		db = dbPool
	} else {
		logger.Log.Warn("DATABASE_URL not set - contact attempts will not be recorded")
	}

	// 5. Setup Email Relay
	var relay email.Relay
	if cfg.RelayDryRun {
		relay = email.NewLogRelay(logger.Log)
		logger.Log.Warn("RELAY_DRY_RUN enabled - messages are logged, not sent")
	} else {
		relay = email.NewEmailJSRelay(cfg.EmailJSAPIURL, cfg.RelayTimeout,
			email.WithAccessToken(cfg.EmailJSPrivateKey),
		)
	}
	if !cfg.Submission().Configured() {
		logger.Log.Warn("EmailJS not fully configured - contact form will refuse submissions")
	}

	// 6. Setup Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	// 7. Setup UseCases
	contactUC := usecase.NewContactUsecase(usecase.ContactOptions{
		Config:             cfg.Submission(),
		Relay:              relay,
		Validate:           validation.New(),
		FeedbackClearDelay: cfg.FeedbackClearDelay,
		SessionTTL:         cfg.SessionTTL,
		Attempts:           attempts,
		Events:             events,
	})
	healthUC := usecase.NewHealthUsecase(cfg.Submission().Configured(), db, redis.HealthCheck)

	portfolio, err := content.Load(cfg.ContentPath)
	if err != nil {
		logger.Log.Error("Failed to load portfolio content", "error", err)
		os.Exit(1)
	}

	// 8. Setup Router
	routerCtx, stopRouter := context.WithCancel(ctx)
	defer stopRouter()
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  healthUC,
		Portfolio: portfolio,
		Events:    events,
		Metrics:   registry,
		Config:    cfg,
		Context:   routerCtx,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	// Cancels in-flight relay calls and pending feedback timers
	contactUC.Close()
	stopRouter()

	logger.Log.Info("Server exiting")
}
