package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/config"
	"resumatch/resume-matcher/internal/handlers"
	"resumatch/resume-matcher/internal/logger"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database connected and migrated")

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("failed to create upload directory", zap.Error(err))
	}

	extractor := services.NewTextExtractor()

	embedder, err := services.NewEmbeddingService(
		cfg.Embedding.DefaultModel,
		services.NewGeminiEncoderFactory(cfg.Gemini.APIKey),
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to initialize embedding service", zap.Error(err))
	}

	vectorIndex, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.CollectionPrefix,
		embedder,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to initialize vector index", zap.Error(err))
	}

	engine := services.NewSimilarityEngine(embedder)
	gaps := services.NewConceptGapExtractor(embedder, zlog)
	skills := services.NewSkillAnalyzer()

	matcher := services.NewMatcherService(
		embedder,
		engine,
		gaps,
		skills,
		vectorIndex,
		docRepo,
		zlog,
	)
	zlog.Info("matcher service initialized", zap.String("model", embedder.ActiveModel().Key))

	// Start the embedding backfill worker
	worker := services.NewWorker(
		docRepo,
		matcher,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
		zlog,
	)
	worker.Start(context.Background())

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(
		docRepo,
		storageService,
		extractor,
		worker,
		cfg.Storage.MaxFileSize,
		zlog,
	)
	analyzeHandler := handlers.NewAnalyzeHandler(matcher, docRepo, analysisRepo, zlog)
	resultHandler := handlers.NewResultHandler(analysisRepo)
	searchHandler := handlers.NewSearchHandler(matcher, embedder, zlog)
	modelHandler := handlers.NewModelHandler(embedder)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/results/:resume_id/:job_description_id", resultHandler.HandleGetResult)
	api.Get("/resumes/:id/results", resultHandler.HandleListByResume)
	api.Get("/resumes/:id/matches", searchHandler.HandleBestMatches)
	api.Post("/search/resumes", searchHandler.HandleSearchResumes)
	api.Post("/search/job-descriptions", searchHandler.HandleSearchJobDescriptions)
	api.Get("/models", modelHandler.HandleListModels)
	api.Put("/models/active", modelHandler.HandleSwitchModel)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/analyze",
				"GET /api/v1/results/:resume_id/:job_description_id",
				"GET /api/v1/resumes/:id/results",
				"GET /api/v1/resumes/:id/matches",
				"POST /api/v1/search/resumes",
				"POST /api/v1/search/job-descriptions",
				"GET /api/v1/models",
				"PUT /api/v1/models/active",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
