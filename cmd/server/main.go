package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codetutor/ai/internal/config"
	"codetutor/ai/internal/evaluation"
	"codetutor/ai/internal/handlers"
	"codetutor/ai/internal/history"
	"codetutor/ai/internal/jobs"
	"codetutor/ai/internal/keystroke"
	"codetutor/ai/internal/lessons"
	"codetutor/ai/internal/llm"
	_ "codetutor/ai/internal/llm/anthropic"
	_ "codetutor/ai/internal/llm/gemini"
	"codetutor/ai/internal/metrics"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/prompts"
	"codetutor/ai/internal/routers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, gradeHandler *handlers.GradeHandler, teacherHandler *handlers.TeacherHandler, questionHandler *handlers.QuestionHandler, sessionHandler *handlers.SessionHandler, historyHandler *handlers.HistoryHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.AIRoutes(router, gradeHandler, teacherHandler, questionHandler, historyHandler)
	routers.SessionRoutes(router, sessionHandler)
}

// Helper functions for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.EvaluationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Bool("credential_present", cfg.HasCredential()))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// lesson catalog
	catalog, err := lessons.NewCatalog()
	if err != nil {
		logger.Fatal("Failed to load lesson catalog", zap.Error(err))
	}

	// AI provider, only when a credential exists. Without one the service
	// still runs: grading, lectures, coaching and question generation all
	// degrade to their local fallbacks.
	var aiProvider llm.Provider
	if cfg.HasCredential() {
		aiProvider, err = llm.NewProvider(cfg.Provider)
		if err != nil {
			logger.Error("Failed to initialize AI provider, running with fallbacks only", zap.Error(err))
			aiProvider = nil
		}
	} else {
		logger.Warn("No LLM credential configured, running with fallbacks only")
	}

	metricsManager := metrics.NewManager()

	retryPolicy := llm.DefaultRetryPolicy
	retryPolicy.OnRetry = metricsManager.CountRetry

	// Initialize database for evaluation history
	var store *history.Store
	var exporterJob *jobs.HistoryExporterJob

	db, err := initDatabase()
	if err != nil {
		logger.Error("Failed to initialize database, history endpoints will be disabled", zap.Error(err))
	} else {
		store = history.NewStore(db)

		exporterConfig := &jobs.ExporterConfig{
			Schedule:  getEnv("HISTORY_EXPORT_SCHEDULE", "0 2 * * *"),
			ExportDir: getEnv("HISTORY_EXPORT_DIR", "./exports"),
			Enabled:   getEnv("HISTORY_EXPORT_ENABLED", "false") == "true",
		}
		exporterJob = jobs.NewHistoryExporterJob(store, exporterConfig, logger)
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start history exporter job", zap.Error(err))
		}
	}

	evaluator := evaluation.NewEvaluator(aiProvider, promptManager, catalog, logger)
	evaluator.SetRetryPolicy(retryPolicy)

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		sessionTTL = 30 * time.Minute
	}
	registry := keystroke.NewRegistry(sessionTTL, keystroke.RecorderOptions{})

	gradeHandler := handlers.NewGradeHandler(evaluator, store, metricsManager, logger, cfg.Provider)
	teacherHandler := handlers.NewTeacherHandler(aiProvider, promptManager, logger)
	teacherHandler.SetRetryPolicy(retryPolicy)
	questionHandler := handlers.NewQuestionHandler(aiProvider, promptManager, logger)
	questionHandler.SetRetryPolicy(retryPolicy)
	sessionHandler := handlers.NewSessionHandler(registry, logger)
	historyHandler := handlers.NewHistoryHandler(store, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, catalog, store, cfg)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metricsManager.Middleware)

	registerRoutes(router, gradeHandler, teacherHandler, questionHandler, sessionHandler, historyHandler, healthHandler)
	routers.MetricsRoute(router, metricsManager.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("AI tutor service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("AI tutor service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
	}

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("AI tutor service exited")
}
