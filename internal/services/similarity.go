package services

// SimilarityEngine exposes pairwise scoring and in-process ranking. Ranking a
// large corpus is what the vector index does at scale; this is the reference
// semantics the index adapter has to match.
type SimilarityEngine interface {
	Score(a, b []float32) float64
	Rank(query []float32, corpus [][]float32, topK int) []SimilarityMatch
}

type similarityEngine struct {
	embedder EmbeddingService
}

func NewSimilarityEngine(embedder EmbeddingService) SimilarityEngine {
	return &similarityEngine{embedder: embedder}
}

// Score implements SimilarityEngine.
func (e *similarityEngine) Score(a, b []float32) float64 {
	return e.embedder.Similarity(a, b)
}

// Rank implements SimilarityEngine.
func (e *similarityEngine) Rank(query []float32, corpus [][]float32, topK int) []SimilarityMatch {
	return e.embedder.FindMostSimilar(query, corpus, topK)
}
