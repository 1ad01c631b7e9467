package services

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// Sentences at or below this stripped length carry no usable requirement.
	minSentenceLength = 10
	// Cap on how many JD sentences get embedded per extraction.
	maxGapSentences = 20
	// Below this similarity a sentence's concept counts as unrepresented in
	// the resume.
	gapSimilarityThreshold = 0.3
	// At most this many representative terms per gap sentence.
	maxTermsPerSentence = 3
	// Output cap across all sentences.
	maxMissingConcepts = 10
)

// ConceptGapExtractor finds job-description requirements that are
// semantically absent from a resume. It is a coarse heuristic: sentences are
// split on periods and represented by a few of their longer words, not by
// real keyword extraction.
type ConceptGapExtractor struct {
	embedder EmbeddingService
	logger   *zap.Logger
}

func NewConceptGapExtractor(embedder EmbeddingService, logger *zap.Logger) *ConceptGapExtractor {
	return &ConceptGapExtractor{
		embedder: embedder,
		logger:   logger,
	}
}

// ExtractMissingConcepts returns up to 10 deduplicated lowercase terms drawn
// from JD sentences whose similarity to the resume embedding falls below the
// gap threshold. Sentences that fail to embed are skipped.
func (e *ConceptGapExtractor) ExtractMissingConcepts(ctx context.Context, jdText string, resumeVec []float32) []string {
	sentences := requirementSentences(jdText)
	if len(sentences) == 0 {
		return []string{}
	}

	vectors, err := e.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		e.logger.Warn("failed to embed job description sentences", zap.Error(err))
		return []string{}
	}

	seen := make(map[string]struct{})
	terms := []string{}

	for i, sentence := range sentences {
		similarity := e.embedder.Similarity(vectors[i], resumeVec)
		if similarity >= gapSimilarityThreshold {
			continue
		}

		taken := 0
		for _, word := range strings.Fields(strings.ToLower(sentence)) {
			if taken == maxTermsPerSentence {
				break
			}
			if utf8.RuneCountInString(word) <= 3 || !isAlphabetic(word) {
				continue
			}
			taken++

			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			terms = append(terms, word)
		}
	}

	if len(terms) > maxMissingConcepts {
		terms = terms[:maxMissingConcepts]
	}
	return terms
}

// requirementSentences splits a job description on periods and keeps at most
// maxGapSentences of the ones long enough to carry a requirement.
func requirementSentences(jdText string) []string {
	var sentences []string
	for _, raw := range strings.Split(jdText, ".") {
		sentence := strings.TrimSpace(raw)
		if utf8.RuneCountInString(sentence) <= minSentenceLength {
			continue
		}
		sentences = append(sentences, sentence)
		if len(sentences) == maxGapSentences {
			break
		}
	}
	return sentences
}

func isAlphabetic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
