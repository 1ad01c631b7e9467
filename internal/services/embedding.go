package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/config"
)

// Encoder turns preprocessed texts into fixed-size vectors. Implementations
// are created per model config and discarded on model switch.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// EncoderFactory materializes an encoder for a catalog entry. Construction is
// expensive, so the embedding service calls it lazily and at most once per
// active model.
type EncoderFactory func(model config.ModelConfig) (Encoder, error)

type SimilarityMatch struct {
	Index int
	Score float64
}

type EmbeddingService interface {
	// Embed returns the vector for a single text. Empty or whitespace-only
	// input yields the zero vector of the active dimension, not an error.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds several texts in one encoder call. Output vectors are
	// identical to embedding each text on its own.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	// Similarity is cosine similarity rescaled from [-1,1] into [0,1] via
	// (cos+1)/2 and clamped. A zero vector on either side scores exactly 0.
	Similarity(a, b []float32) float64
	// FindMostSimilar ranks candidates by descending similarity to the query.
	// Ties keep input order so results are deterministic.
	FindMostSimilar(query []float32, candidates [][]float32, topK int) []SimilarityMatch
	// SwitchModel changes which catalog model subsequent Embed calls use. The
	// cached encoder is discarded; stored embeddings are not re-embedded.
	SwitchModel(key string) error
	ActiveModel() config.ModelConfig
}

type embeddingService struct {
	mu      sync.RWMutex
	model   config.ModelConfig
	encoder Encoder
	factory EncoderFactory
	logger  *zap.Logger
}

func NewEmbeddingService(modelKey string, factory EncoderFactory, logger *zap.Logger) (EmbeddingService, error) {
	model, err := config.GetEmbeddingModelConfig(modelKey)
	if err != nil {
		return nil, err
	}

	logger.Info("embedding service initialized",
		zap.String("model_key", model.Key),
		zap.String("model_name", model.Name),
		zap.Int("dimensions", model.Dimensions),
	)

	return &embeddingService{
		model:   model,
		factory: factory,
		logger:  logger,
	}, nil
}

// getEncoder returns the active encoder together with the model it was built
// for, creating it on first use. The snapshot guarantees an in-flight caller
// uses one model end to end even if SwitchModel runs concurrently.
func (s *embeddingService) getEncoder() (Encoder, config.ModelConfig, error) {
	s.mu.RLock()
	encoder, model := s.encoder, s.model
	s.mu.RUnlock()

	if encoder != nil {
		return encoder, model, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encoder == nil {
		s.logger.Info("loading embedding model",
			zap.String("model_key", s.model.Key),
			zap.String("model_name", s.model.Name),
		)
		encoder, err := s.factory(s.model)
		if err != nil {
			return nil, s.model, fmt.Errorf("failed to load embedding model %q: %w", s.model.Key, err)
		}
		s.encoder = encoder
	}

	return s.encoder, s.model, nil
}

// Embed implements EmbeddingService.
func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch implements EmbeddingService.
func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	cleaned := make([]string, len(texts))
	for i, text := range texts {
		cleaned[i] = Preprocess(text)
	}

	// Only non-empty texts reach the encoder; empty slots get zero vectors.
	var toEncode []string
	var encodeIdx []int
	for i, text := range cleaned {
		if text != "" {
			toEncode = append(toEncode, text)
			encodeIdx = append(encodeIdx, i)
		}
	}

	// Nothing to encode: zero vectors of the active dimension, without
	// triggering a model load.
	if len(toEncode) == 0 {
		dim := s.Dimension()
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, dim)
		}
		return vectors, nil
	}

	encoder, model, err := s.getEncoder()
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = make([]float32, model.Dimensions)
	}

	encoded, err := encoder.Encode(ctx, toEncode)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(encoded) != len(toEncode) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d texts", len(encoded), len(toEncode))
	}

	for j, vec := range encoded {
		if len(vec) != model.Dimensions {
			return nil, fmt.Errorf("encoder returned %d-dimensional vector, expected %d", len(vec), model.Dimensions)
		}
		vectors[encodeIdx[j]] = vec
	}

	return vectors, nil
}

// Dimension implements EmbeddingService.
func (s *embeddingService) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Dimensions
}

// Similarity implements EmbeddingService.
func (s *embeddingService) Similarity(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	// Cosine similarity is undefined for a zero vector; treat it as no match.
	if normA == 0 || normB == 0 {
		return 0.0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Rescale [-1,1] into [0,1]. Verdict thresholds downstream assume this
	// exact formula.
	similarity := (cos + 1) / 2
	return math.Max(0.0, math.Min(1.0, similarity))
}

// FindMostSimilar implements EmbeddingService.
func (s *embeddingService) FindMostSimilar(query []float32, candidates [][]float32, topK int) []SimilarityMatch {
	if len(candidates) == 0 || topK <= 0 {
		return nil
	}

	matches := make([]SimilarityMatch, len(candidates))
	for i, candidate := range candidates {
		matches[i] = SimilarityMatch{Index: i, Score: s.Similarity(query, candidate)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// SwitchModel implements EmbeddingService.
func (s *embeddingService) SwitchModel(key string) error {
	model, err := config.GetEmbeddingModelConfig(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.model.Key
	s.model = model
	s.encoder = nil
	s.mu.Unlock()

	s.logger.Info("embedding model switched",
		zap.String("from", previous),
		zap.String("to", model.Key),
		zap.Int("dimensions", model.Dimensions),
	)
	return nil
}

// ActiveModel implements EmbeddingService.
func (s *embeddingService) ActiveModel() config.ModelConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}
