package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/usecase"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/infrastructure/adapter/mongo"
	"github.com/fixora/taskhub/infrastructure/adapter/postgres"
	"github.com/fixora/taskhub/infrastructure/config"
	"github.com/fixora/taskhub/infrastructure/http/handler"
	"github.com/fixora/taskhub/infrastructure/http/middleware"
	"github.com/fixora/taskhub/infrastructure/http/router"
	"github.com/fixora/taskhub/infrastructure/http/validator"
	"github.com/fixora/taskhub/infrastructure/service/drive"
	"github.com/fixora/taskhub/infrastructure/service/jwt"
	"github.com/fixora/taskhub/infrastructure/service/logger"
	"github.com/fixora/taskhub/infrastructure/service/metrics"
	"github.com/fixora/taskhub/infrastructure/service/password"
	"github.com/fixora/taskhub/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrusLogger := logger.NewLogrus(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "taskhub",
	})
	structuredLogger := logger.Wrap(logrusLogger, "taskhub")
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":         cfg.Environment,
		"audit_store": cfg.AuditStore,
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, nil)
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	rateLimitService, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:       cfg.RateLimitEnabled,
		RedisURL:      cfg.RedisURL,
		IPAttempts:    cfg.RateLimitIPAttempts,
		IPWindow:      cfg.RateLimitIPWindow,
		UserAttempts:  cfg.RateLimitUserAttempts,
		UserWindow:    cfg.RateLimitUserWindow,
		BlockDuration: cfg.RateLimitBlockDuration,
	}, logrusLogger)
	if err != nil {
		structuredLogger.Warn(ctx, "Rate limiting unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		rateLimitService = ratelimit.NewNoop()
	}

	tokenService, err := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(password.DefaultCost)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	healthChecks := map[string]handler.HealthCheck{
		"postgres": db.PingContext,
	}

	var auditRepo outbound.AuditRepository
	var mongoClient *mongodriver.Client
	switch cfg.AuditStore {
	case config.AuditStoreMongo:
		mongoClient, err = mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to audit store: %v", err)
		}
		repo := mongo.NewAuditRepository(mongoClient.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			structuredLogger.Error(ctx, "Failed to ensure audit indexes", err, nil)
		}
		auditRepo = repo
		healthChecks["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	default:
		auditRepo = postgres.NewAuditRepository(db)
	}

	var fileStorage outbound.FileStorage = drive.DisabledStorage{}
	if cfg.DriveConfigured() {
		ds, err := drive.NewDriveStorage(ctx, drive.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			RefreshToken: cfg.GoogleRefreshToken,
			FolderIDs: map[outbound.StorageFolder]string{
				outbound.FolderTaskFiles:   cfg.DriveFolderTasks,
				outbound.FolderPosters:     cfg.DriveFolderEvents,
				outbound.FolderRemarkFiles: cfg.DriveFolderRemarks,
			},
		}, structuredLogger)
		if err != nil {
			structuredLogger.Error(ctx, "Failed to initialize Google Drive, uploads disabled", err, nil)
		} else {
			fileStorage = ds
		}
	} else {
		structuredLogger.Warn(ctx, "Google Drive not configured, uploads disabled", nil)
	}

	// Repositories
	employeeRepo := postgres.NewEmployeeRepository(db)
	organizationRepo := postgres.NewOrganizationRepository(db)
	industryRepo := postgres.NewIndustryRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	// Use cases
	auditRecorder := usecase.NewAuditRecorder(auditRepo, domain.AuditPolicy{LogReads: cfg.AuditLogReads}, appMetrics, structuredLogger)
	fileUseCase := usecase.NewFileUseCase(fileStorage, cfg.UploadMaxFiles, cfg.UploadMaxBytes)
	loginUseCase := usecase.NewLoginUseCase(employeeRepo, tokenService, passwordService, rateLimitService, usecase.LoginLimits{
		IPAttempts:    cfg.RateLimitIPAttempts,
		IPWindow:      cfg.RateLimitIPWindow,
		UserAttempts:  cfg.RateLimitUserAttempts,
		UserWindow:    cfg.RateLimitUserWindow,
		BlockDuration: cfg.RateLimitBlockDuration,
	})
	employeeUseCase := usecase.NewEmployeeUseCase(employeeRepo, passwordService, auditRecorder)
	organizationUseCase := usecase.NewOrganizationUseCase(organizationRepo, auditRecorder)
	industryUseCase := usecase.NewIndustryUseCase(industryRepo, auditRecorder)
	eventUseCase := usecase.NewEventUseCase(eventRepo, fileUseCase, auditRecorder)
	taskUseCase := usecase.NewTaskUseCase(taskRepo, auditRepo, fileUseCase, auditRecorder)
	auditQueryUseCase := usecase.NewAuditQueryUseCase(auditRepo)

	// Handlers
	v := validator.New()
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(loginUseCase, v, structuredLogger, appMetrics),
		Employees:     handler.NewEmployeeHandler(employeeUseCase, v),
		Organizations: handler.NewOrganizationHandler(organizationUseCase, v),
		Industries:    handler.NewIndustryHandler(industryUseCase, v),
		Events:        handler.NewEventHandler(eventUseCase, v, cfg.UploadMaxBytes),
		Tasks:         handler.NewTaskHandler(taskUseCase, v, cfg.UploadMaxBytes),
		Audit:         handler.NewAuditHandler(auditQueryUseCase),
		Health:        handler.NewHealthHandler(healthChecks),
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		handlers.DriveAuth = handler.NewDriveAuthHandler(
			drive.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
			structuredLogger,
		)
	}

	r := router.New(handlers, router.Options{
		Auth:             middleware.NewAuthMiddleware(tokenService, employeeRepo),
		RateLimit:        middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger, cfg.RateLimitAPIRequests, cfg.RateLimitAPIWindow, cfg.RateLimitBlockDuration),
		Logger:           structuredLogger,
		Metrics:          appMetrics,
		Gatherer:         registry,
		EnableRequestLog: cfg.LogEnableRequestLog,
	})

	// Compose middleware: CorrelationID then CORS (if enabled)
	var h http.Handler = middleware.CorrelationIDMiddleware(r)
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		h = middleware.CORSMiddleware(h, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}
	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			structuredLogger.Error(ctx, "Server failed to start", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			structuredLogger.Error(ctx, "Failed to disconnect audit store", err, nil)
		}
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
