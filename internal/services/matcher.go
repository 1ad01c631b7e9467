package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
)

// AnalyzeDocs identifies the stored documents behind an analysis. Its
// presence on an input is what turns on vector persistence.
type AnalyzeDocs struct {
	ResumeID         uuid.UUID
	JobDescriptionID uuid.UUID
}

type AnalyzeInput struct {
	resumeText string
	jdText     string
	docs       *AnalyzeDocs
}

// NewPairwiseInput analyzes two raw texts with no persistence side effects.
func NewPairwiseInput(resumeText, jdText string) AnalyzeInput {
	return AnalyzeInput{resumeText: resumeText, jdText: jdText}
}

// NewPersistedInput additionally hands the computed vectors to the vector
// index, keyed by the given document ids.
func NewPersistedInput(resumeText, jdText string, resumeID, jdID uuid.UUID) AnalyzeInput {
	return AnalyzeInput{
		resumeText: resumeText,
		jdText:     jdText,
		docs:       &AnalyzeDocs{ResumeID: resumeID, JobDescriptionID: jdID},
	}
}

// MatcherService is the core entry point: it turns a resume and a job
// description into a relevance judgment.
type MatcherService interface {
	// Analyze always returns a well-formed Analysis. Failures surface as the
	// fixed fallback payload, never as an error.
	Analyze(ctx context.Context, input AnalyzeInput) *models.Analysis
	// IndexDocument embeds a stored document and upserts it into the vector
	// index, marking its embedding status on success.
	IndexDocument(ctx context.Context, doc *models.Document) error
	// SearchSimilar ranks indexed documents of a kind against a query text.
	SearchSimilar(ctx context.Context, kind models.DocumentKind, queryText string, topK int) ([]IndexMatch, error)
	// BestMatches returns the closest job descriptions for a stored resume.
	BestMatches(ctx context.Context, resumeID uuid.UUID, topK int) ([]IndexMatch, error)
}

type matcherService struct {
	embedder EmbeddingService
	engine   SimilarityEngine
	gaps     *ConceptGapExtractor
	skills   *SkillAnalyzer
	index    VectorIndex
	docRepo  repositories.DocumentRepository
	logger   *zap.Logger
}

func NewMatcherService(
	embedder EmbeddingService,
	engine SimilarityEngine,
	gaps *ConceptGapExtractor,
	skills *SkillAnalyzer,
	index VectorIndex,
	docRepo repositories.DocumentRepository,
	logger *zap.Logger,
) MatcherService {
	return &matcherService{
		embedder: embedder,
		engine:   engine,
		gaps:     gaps,
		skills:   skills,
		index:    index,
		docRepo:  docRepo,
		logger:   logger,
	}
}

// Analyze implements MatcherService.
func (m *matcherService) Analyze(ctx context.Context, input AnalyzeInput) *models.Analysis {
	analysis, err := m.analyze(ctx, input)
	if err != nil {
		m.logger.Error("analysis failed, returning fallback result", zap.Error(err))
		return models.FallbackAnalysis()
	}
	return analysis
}

func (m *matcherService) analyze(ctx context.Context, input AnalyzeInput) (*models.Analysis, error) {
	resumeVec, err := m.embedder.Embed(ctx, input.resumeText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed resume: %w", err)
	}

	jdVec, err := m.embedder.Embed(ctx, input.jdText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job description: %w", err)
	}

	similarity := m.engine.Score(resumeVec, jdVec)
	relevance := math.Round(similarity*100*100) / 100
	verdict := models.VerdictFor(relevance)

	// Index writes are best-effort caching; a failure here never degrades the
	// analysis itself.
	if input.docs != nil {
		m.persistVectors(ctx, input.docs, resumeVec, jdVec)
	}

	missing := m.gaps.ExtractMissingConcepts(ctx, input.jdText, resumeVec)

	return &models.Analysis{
		Relevance:       relevance,
		Verdict:         verdict,
		MissingKeywords: missing,
		TechnicalSkills: m.skills.ScoreTechnical(input.resumeText, input.jdText),
		SoftSkills:      m.skills.ScoreSoft(input.resumeText, input.jdText),
		SimilarityScore: similarity,
		AnalysisMethod:  models.MethodSemanticEmbedding,
	}, nil
}

func (m *matcherService) persistVectors(ctx context.Context, docs *AnalyzeDocs, resumeVec, jdVec []float32) {
	for _, entry := range []struct {
		id     uuid.UUID
		vector []float32
	}{
		{docs.ResumeID, resumeVec},
		{docs.JobDescriptionID, jdVec},
	} {
		doc, err := m.docRepo.FindByID(entry.id)
		if err != nil {
			m.logger.Warn("document not found for vector persistence",
				zap.String("document_id", entry.id.String()),
				zap.Error(err),
			)
			continue
		}
		m.upsertVector(ctx, doc, entry.vector)
	}
}

func (m *matcherService) upsertVector(ctx context.Context, doc *models.Document, vector []float32) {
	if err := m.index.Upsert(ctx, doc.Kind, doc.ID.String(), vector, documentMetadata(doc)); err != nil {
		m.logger.Warn("failed to upsert document vector",
			zap.String("document_id", doc.ID.String()),
			zap.String("kind", string(doc.Kind)),
			zap.Error(err),
		)
		return
	}

	model := m.embedder.ActiveModel()
	if err := m.docRepo.UpdateEmbeddingStatus(doc.ID, model.Name); err != nil {
		m.logger.Warn("failed to update embedding status",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}
}

// IndexDocument implements MatcherService.
func (m *matcherService) IndexDocument(ctx context.Context, doc *models.Document) error {
	vector, err := m.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", doc.ID, err)
	}

	if err := m.index.Upsert(ctx, doc.Kind, doc.ID.String(), vector, documentMetadata(doc)); err != nil {
		return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
	}

	model := m.embedder.ActiveModel()
	if err := m.docRepo.UpdateEmbeddingStatus(doc.ID, model.Name); err != nil {
		return fmt.Errorf("failed to update embedding status for %s: %w", doc.ID, err)
	}

	return nil
}

// SearchSimilar implements MatcherService.
func (m *matcherService) SearchSimilar(ctx context.Context, kind models.DocumentKind, queryText string, topK int) ([]IndexMatch, error) {
	vector, err := m.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := m.index.Query(ctx, kind, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}

	return matches, nil
}

// BestMatches implements MatcherService.
func (m *matcherService) BestMatches(ctx context.Context, resumeID uuid.UUID, topK int) ([]IndexMatch, error) {
	doc, err := m.docRepo.FindByID(resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}

	if Preprocess(doc.Content) == "" {
		return []IndexMatch{}, nil
	}

	return m.SearchSimilar(ctx, models.KindJobDescription, doc.Content, topK)
}

func documentMetadata(doc *models.Document) map[string]interface{} {
	metadata := map[string]interface{}{
		"filename":    doc.Filename,
		"text_length": int64(len(doc.Content)),
		"created_at":  doc.CreatedAt.Format(time.RFC3339),
	}

	switch doc.Kind {
	case models.KindResume:
		metadata["candidate_name"] = doc.CandidateName
		metadata["email"] = doc.Email
	case models.KindJobDescription:
		metadata["company"] = doc.Company
		metadata["role"] = doc.Role
		metadata["location"] = doc.Location
	}

	return metadata
}
