package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capturingEncoder records the texts it was asked to encode.
type capturingEncoder struct {
	inner Encoder
	seen  []string
}

func (c *capturingEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	c.seen = append(c.seen, texts...)
	return c.inner.Encode(ctx, texts)
}

func TestExtractMissingConceptsFindsGaps(t *testing.T) {
	gapVec := padVec(testDim, -1, 0)     // rescaled similarity 0.0 vs resume
	coveredVec := padVec(testDim, 1, 0)  // rescaled similarity 1.0 vs resume

	enc := &stubEncoder{vectors: map[string][]float32{
		"We need Kubernetes experience and infrastructure automation": gapVec,
		"Python scripting is part of daily work":                      coveredVec,
	}}
	extractor := NewConceptGapExtractor(newTestEmbedder(t, enc), zap.NewNop())

	jd := "We need Kubernetes experience and infrastructure automation. Python scripting is part of daily work. Ok."
	resumeVec := padVec(testDim, 1, 0)

	terms := extractor.ExtractMissingConcepts(context.Background(), jd, resumeVec)

	// Only the low-similarity sentence contributes; "we" is too short and at
	// most three terms are taken.
	assert.Equal(t, []string{"need", "kubernetes", "experience"}, terms)
}

func TestExtractMissingConceptsSkipsShortAndNonAlphabeticWords(t *testing.T) {
	gapVec := padVec(testDim, -1, 0)
	enc := &stubEncoder{fallback: gapVec}
	extractor := NewConceptGapExtractor(newTestEmbedder(t, enc), zap.NewNop())

	// "CI/CD," and "24x7" are not purely alphabetic; "for" and "ops" are too
	// short.
	jd := "Maintain CI/CD, pipelines for ops teams around 24x7 operations"
	terms := extractor.ExtractMissingConcepts(context.Background(), jd, padVec(testDim, 1, 0))

	assert.Equal(t, []string{"maintain", "pipelines", "teams"}, terms)
}

func TestExtractMissingConceptsDeduplicates(t *testing.T) {
	enc := &stubEncoder{fallback: padVec(testDim, -1, 0)}
	extractor := NewConceptGapExtractor(newTestEmbedder(t, enc), zap.NewNop())

	jd := "kubernetes kubernetes kubernetes experience. kubernetes experience needed again."
	terms := extractor.ExtractMissingConcepts(context.Background(), jd, padVec(testDim, 1, 0))

	seen := map[string]int{}
	for _, term := range terms {
		seen[term]++
	}
	for term, count := range seen {
		assert.Equal(t, 1, count, "term %q duplicated", term)
	}
}

func TestExtractMissingConceptsCapsOutputAtTen(t *testing.T) {
	enc := &stubEncoder{fallback: padVec(testDim, -1, 0)}
	extractor := NewConceptGapExtractor(newTestEmbedder(t, enc), zap.NewNop())

	var sb strings.Builder
	for i := 0; i < 6; i++ {
		prefix := string(rune('a' + i))
		fmt.Fprintf(&sb, "%[1]svery %[1]smuch %[1]slong padding. ", prefix)
	}

	terms := extractor.ExtractMissingConcepts(context.Background(), sb.String(), padVec(testDim, 1, 0))
	assert.Len(t, terms, maxMissingConcepts)
}

func TestExtractMissingConceptsBoundsSentenceCount(t *testing.T) {
	capture := &capturingEncoder{inner: &stubEncoder{fallback: padVec(testDim, 1, 0)}}
	extractor := NewConceptGapExtractor(newTestEmbedder(t, capture), zap.NewNop())

	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "requirement sentence number %d here. ", i)
	}

	extractor.ExtractMissingConcepts(context.Background(), sb.String(), padVec(testDim, 1, 0))
	assert.Len(t, capture.seen, maxGapSentences)
}

func TestExtractMissingConceptsEmptyJobDescription(t *testing.T) {
	capture := &capturingEncoder{inner: &stubEncoder{fallback: padVec(testDim, 1, 0)}}
	extractor := NewConceptGapExtractor(newTestEmbedder(t, capture), zap.NewNop())

	terms := extractor.ExtractMissingConcepts(context.Background(), "short. tiny.", padVec(testDim, 1, 0))

	assert.Empty(t, terms)
	assert.Empty(t, capture.seen)
}

func TestExtractMissingConceptsDegradesOnEmbedFailure(t *testing.T) {
	enc := &stubEncoder{err: errors.New("encoder offline")}
	extractor := NewConceptGapExtractor(newTestEmbedder(t, enc), zap.NewNop())

	terms := extractor.ExtractMissingConcepts(context.Background(), "a long requirement sentence here.", padVec(testDim, 1, 0))
	require.NotNil(t, terms)
	assert.Empty(t, terms)
}

func TestRequirementSentencesFiltersByLength(t *testing.T) {
	sentences := requirementSentences("Short one. This sentence is long enough to count. no.")
	assert.Equal(t, []string{"This sentence is long enough to count"}, sentences)
}
