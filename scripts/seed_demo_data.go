package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/config"
	"resumatch/resume-matcher/internal/logger"
	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

// Seeds a handful of demo resumes and job descriptions and indexes them, so a
// fresh install has something to search against.
func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	docRepo := repositories.NewDocumentRepository(db)

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

	matcher := services.NewMatcherService(
		embedder,
		services.NewSimilarityEngine(embedder),
		services.NewConceptGapExtractor(embedder, zlog),
		services.NewSkillAnalyzer(),
		vectorIndex,
		docRepo,
		zlog,
	)

	documents := []models.Document{
		{
			Kind:          models.KindResume,
			CandidateName: "Jordan Smith",
			Email:         "jordan.smith@example.com",
			Content: "Experienced Python developer with 5 years building data pipelines. " +
				"Strong SQL and PostgreSQL background, production experience with AWS and Docker. " +
				"Led a team of three engineers and presented results to stakeholders.",
		},
		{
			Kind:          models.KindResume,
			CandidateName: "Casey Lee",
			Email:         "casey.lee@example.com",
			Content: "Frontend engineer specializing in React and JavaScript. " +
				"Built accessible design systems and component libraries. " +
				"Comfortable with teamwork and communication across distributed teams.",
		},
		{
			Kind:     models.KindJobDescription,
			Company:  "Acme Analytics",
			Role:     "Backend Engineer",
			Location: "Remote",
			Content: "Looking for a Python developer with SQL, AWS, and Kubernetes experience. " +
				"You will design data services used across the company. " +
				"Must have strong communication skills and a problem solving mindset.",
		},
		{
			Kind:     models.KindJobDescription,
			Company:  "Brightside Web",
			Role:     "Frontend Engineer",
			Location: "Berlin",
			Content: "We need a JavaScript engineer with deep React knowledge. " +
				"Experience with Vue is a plus. Teamwork and attention to detail matter to us.",
		},
	}

	ctx := context.Background()

	for i := range documents {
		doc := &documents[i]
		doc.ID = uuid.New()
		doc.FileType = "txt"
		doc.CreatedAt = time.Now()
		doc.UpdatedAt = time.Now()

		if err := docRepo.Create(doc); err != nil {
			zlog.Fatal("failed to create demo document", zap.Error(err))
		}

		if err := matcher.IndexDocument(ctx, doc); err != nil {
			zlog.Warn("failed to index demo document",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err),
			)
			continue
		}

		zlog.Info("seeded demo document",
			zap.String("document_id", doc.ID.String()),
			zap.String("kind", string(doc.Kind)),
		)
	}

	zlog.Info("demo data seeding complete", zap.Int("documents", len(documents)))
}
