package services

import "strings"

// maxEmbeddingWords bounds input length so every catalog model stays inside
// its token limit. Truncation keeps the prefix, which makes results
// reproducible for a given input.
const maxEmbeddingWords = 512

// Preprocess normalizes raw extracted text before embedding: trims, collapses
// whitespace runs to single spaces, and truncates to the word ceiling. Empty
// or whitespace-only input yields "", which callers treat as "no signal".
func Preprocess(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	if len(words) > maxEmbeddingWords {
		words = words[:maxEmbeddingWords]
	}

	return strings.Join(words, " ")
}
