package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
)

type upsertCall struct {
	kind     models.DocumentKind
	docID    string
	vector   []float32
	metadata map[string]interface{}
}

type stubVectorIndex struct {
	upserts    []upsertCall
	upsertErr  error
	queryKind  models.DocumentKind
	queryCalls int
	matches    []IndexMatch
	queryErr   error
}

func (s *stubVectorIndex) Upsert(_ context.Context, kind models.DocumentKind, docID string, vector []float32, metadata map[string]interface{}) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, upsertCall{kind: kind, docID: docID, vector: vector, metadata: metadata})
	return nil
}

func (s *stubVectorIndex) Query(_ context.Context, kind models.DocumentKind, _ []float32, _ int) ([]IndexMatch, error) {
	s.queryKind = kind
	s.queryCalls++
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches, nil
}

func (s *stubVectorIndex) Delete(context.Context, models.DocumentKind, string) error {
	return nil
}

type statusUpdate struct {
	id    uuid.UUID
	model string
}

type stubDocumentRepo struct {
	docs          map[uuid.UUID]*models.Document
	statusUpdates []statusUpdate
	statusErr     error
}

func newStubDocumentRepo(docs ...*models.Document) *stubDocumentRepo {
	repo := &stubDocumentRepo{docs: make(map[uuid.UUID]*models.Document)}
	for _, doc := range docs {
		repo.docs[doc.ID] = doc
	}
	return repo
}

func (s *stubDocumentRepo) Create(doc *models.Document) error {
	s.docs[doc.ID] = doc
	return nil
}

func (s *stubDocumentRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	return doc, nil
}

func (s *stubDocumentRepo) FindByKind(kind models.DocumentKind) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range s.docs {
		if doc.Kind == kind {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *stubDocumentRepo) FindWithoutEmbeddings(limit int) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range s.docs {
		if !doc.HasEmbedding && len(out) < limit {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *stubDocumentRepo) UpdateEmbeddingStatus(id uuid.UUID, modelName string) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statusUpdates = append(s.statusUpdates, statusUpdate{id: id, model: modelName})
	return nil
}

func newTestMatcher(t *testing.T, enc Encoder, index VectorIndex, repo *stubDocumentRepo) MatcherService {
	t.Helper()
	embedder := newTestEmbedder(t, enc)
	return NewMatcherService(
		embedder,
		NewSimilarityEngine(embedder),
		NewConceptGapExtractor(embedder, zap.NewNop()),
		NewSkillAnalyzer(),
		index,
		repo,
		zap.NewNop(),
	)
}

func TestAnalyzeReturnsFallbackWhenEmbeddingFails(t *testing.T) {
	enc := &stubEncoder{err: errors.New("provider unavailable")}
	matcher := newTestMatcher(t, enc, &stubVectorIndex{}, newStubDocumentRepo())

	got := matcher.Analyze(context.Background(), NewPairwiseInput("resume text", "jd text"))

	require.NotNil(t, got)
	assert.Equal(t, models.FallbackAnalysis(), got)
}

func TestAnalyzeIdenticalTextsScoreFullRelevance(t *testing.T) {
	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	matcher := newTestMatcher(t, enc, &stubVectorIndex{}, newStubDocumentRepo())

	resume := "Seasoned orchard keeper tending plum trees"
	jd := "Seeking an orchard keeper with pruning expertise"

	got := matcher.Analyze(context.Background(), NewPairwiseInput(resume, jd))

	assert.Equal(t, 100.0, got.Relevance)
	assert.Equal(t, models.VerdictHigh, got.Verdict)
	assert.InDelta(t, 1.0, got.SimilarityScore, 1e-9)
	assert.Equal(t, models.MethodSemanticEmbedding, got.AnalysisMethod)
	assert.Empty(t, got.MissingKeywords)
	assert.Empty(t, got.TechnicalSkills)
	assert.Empty(t, got.SoftSkills)
}

func TestAnalyzeEmptyTextsScoreZero(t *testing.T) {
	matcher := newTestMatcher(t, &stubEncoder{}, &stubVectorIndex{}, newStubDocumentRepo())

	got := matcher.Analyze(context.Background(), NewPairwiseInput("", ""))

	assert.Equal(t, 0.0, got.Relevance)
	assert.Equal(t, models.VerdictLow, got.Verdict)
	assert.Equal(t, 0.0, got.SimilarityScore)
	assert.Equal(t, models.MethodSemanticEmbedding, got.AnalysisMethod)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"resume about orchards": padVec(testDim, 1, 0),
		"jd about orchards":     padVec(testDim, 0.8, 0.6),
	}}
	matcher := newTestMatcher(t, enc, &stubVectorIndex{}, newStubDocumentRepo())

	input := NewPairwiseInput("resume about orchards", "jd about orchards")
	first := matcher.Analyze(context.Background(), input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, matcher.Analyze(context.Background(), input))
	}
}

func TestAnalyzePersistedInputUpsertsBothVectors(t *testing.T) {
	resumeDoc := &models.Document{
		ID:            uuid.New(),
		Kind:          models.KindResume,
		CandidateName: "Jordan Smith",
		Content:       "orchard keeper resume",
	}
	jdDoc := &models.Document{
		ID:      uuid.New(),
		Kind:    models.KindJobDescription,
		Company: "Acme Analytics",
		Content: "orchard keeper wanted",
	}

	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	index := &stubVectorIndex{}
	repo := newStubDocumentRepo(resumeDoc, jdDoc)
	matcher := newTestMatcher(t, enc, index, repo)

	input := NewPersistedInput(resumeDoc.Content, jdDoc.Content, resumeDoc.ID, jdDoc.ID)
	got := matcher.Analyze(context.Background(), input)
	assert.Equal(t, models.MethodSemanticEmbedding, got.AnalysisMethod)

	require.Len(t, index.upserts, 2)
	assert.Equal(t, models.KindResume, index.upserts[0].kind)
	assert.Equal(t, resumeDoc.ID.String(), index.upserts[0].docID)
	assert.Equal(t, "Jordan Smith", index.upserts[0].metadata["candidate_name"])
	assert.Equal(t, models.KindJobDescription, index.upserts[1].kind)
	assert.Equal(t, jdDoc.ID.String(), index.upserts[1].docID)
	assert.Equal(t, "Acme Analytics", index.upserts[1].metadata["company"])

	require.Len(t, repo.statusUpdates, 2)
	assert.Equal(t, resumeDoc.ID, repo.statusUpdates[0].id)
	assert.Equal(t, jdDoc.ID, repo.statusUpdates[1].id)
	assert.Equal(t, "text-embedding-004", repo.statusUpdates[0].model)
}

func TestAnalyzePairwiseInputSkipsIndexing(t *testing.T) {
	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	index := &stubVectorIndex{}
	repo := newStubDocumentRepo()
	matcher := newTestMatcher(t, enc, index, repo)

	matcher.Analyze(context.Background(), NewPairwiseInput("some resume", "some listing"))

	assert.Empty(t, index.upserts)
	assert.Empty(t, repo.statusUpdates)
}

func TestAnalyzeIndexFailureDoesNotDegradeResult(t *testing.T) {
	doc := &models.Document{ID: uuid.New(), Kind: models.KindResume, Content: "resume"}
	jd := &models.Document{ID: uuid.New(), Kind: models.KindJobDescription, Content: "listing"}

	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	index := &stubVectorIndex{upsertErr: errors.New("qdrant down")}
	repo := newStubDocumentRepo(doc, jd)
	matcher := newTestMatcher(t, enc, index, repo)

	got := matcher.Analyze(context.Background(), NewPersistedInput(doc.Content, jd.Content, doc.ID, jd.ID))

	assert.Equal(t, models.MethodSemanticEmbedding, got.AnalysisMethod)
	assert.Equal(t, 100.0, got.Relevance)
	assert.Empty(t, repo.statusUpdates)
}

func TestAnalyzeMissingDocumentSkipsItsVector(t *testing.T) {
	jd := &models.Document{ID: uuid.New(), Kind: models.KindJobDescription, Content: "listing"}

	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	index := &stubVectorIndex{}
	repo := newStubDocumentRepo(jd)
	matcher := newTestMatcher(t, enc, index, repo)

	matcher.Analyze(context.Background(), NewPersistedInput("resume", jd.Content, uuid.New(), jd.ID))

	require.Len(t, index.upserts, 1)
	assert.Equal(t, jd.ID.String(), index.upserts[0].docID)
}

func TestIndexDocument(t *testing.T) {
	doc := &models.Document{
		ID:       uuid.New(),
		Kind:     models.KindJobDescription,
		Company:  "Acme Analytics",
		Role:     "Backend Engineer",
		Content:  "orchard keeper wanted",
		Filename: "jd_1.txt",
	}

	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	index := &stubVectorIndex{}
	repo := newStubDocumentRepo(doc)
	matcher := newTestMatcher(t, enc, index, repo)

	require.NoError(t, matcher.IndexDocument(context.Background(), doc))

	require.Len(t, index.upserts, 1)
	assert.Equal(t, doc.ID.String(), index.upserts[0].docID)
	assert.Equal(t, "jd_1.txt", index.upserts[0].metadata["filename"])
	require.Len(t, repo.statusUpdates, 1)
	assert.Equal(t, doc.ID, repo.statusUpdates[0].id)
}

func TestIndexDocumentEmbedFailure(t *testing.T) {
	doc := &models.Document{ID: uuid.New(), Kind: models.KindResume, Content: "text"}
	enc := &stubEncoder{err: errors.New("provider unavailable")}
	matcher := newTestMatcher(t, enc, &stubVectorIndex{}, newStubDocumentRepo(doc))

	err := matcher.IndexDocument(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed document")
}

func TestSearchSimilarReturnsIndexMatches(t *testing.T) {
	want := []IndexMatch{{DocID: uuid.New().String(), Score: 0.91}}
	index := &stubVectorIndex{matches: want}
	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	matcher := newTestMatcher(t, enc, index, newStubDocumentRepo())

	got, err := matcher.SearchSimilar(context.Background(), models.KindResume, "query text", 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, models.KindResume, index.queryKind)
}

func TestBestMatchesEmptyResumeShortCircuits(t *testing.T) {
	doc := &models.Document{ID: uuid.New(), Kind: models.KindResume, Content: "   "}
	index := &stubVectorIndex{}
	matcher := newTestMatcher(t, &stubEncoder{}, index, newStubDocumentRepo(doc))

	got, err := matcher.BestMatches(context.Background(), doc.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, index.queryCalls)
}

func TestBestMatchesQueriesJobDescriptions(t *testing.T) {
	doc := &models.Document{ID: uuid.New(), Kind: models.KindResume, Content: "orchard keeper resume"}
	index := &stubVectorIndex{matches: []IndexMatch{{DocID: "jd-1", Score: 0.8}}}
	enc := &stubEncoder{fallback: padVec(testDim, 1, 0)}
	matcher := newTestMatcher(t, enc, index, newStubDocumentRepo(doc))

	got, err := matcher.BestMatches(context.Background(), doc.ID, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.KindJobDescription, index.queryKind)
}

func TestBestMatchesUnknownResume(t *testing.T) {
	matcher := newTestMatcher(t, &stubEncoder{}, &stubVectorIndex{}, newStubDocumentRepo())

	_, err := matcher.BestMatches(context.Background(), uuid.New(), 3)
	require.Error(t, err)
}
