package config

import (
	"fmt"
	"sort"
	"strings"
)

// ModelConfig describes one entry in the embedding model catalog. An embedding
// is only comparable to embeddings produced by the same catalog entry; the
// model key travels with every stored vector so that mismatches are detectable.
type ModelConfig struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Dimensions  int    `json:"dimensions"`
	Performance string `json:"performance"`
	Quality     string `json:"quality"`
}

const DefaultModelKey = "fast"

var embeddingModels = map[string]ModelConfig{
	"fast": {
		Key:         "fast",
		Name:        "text-embedding-004",
		Description: "Fast and lightweight model, good for quick processing",
		Dimensions:  256,
		Performance: "Fast",
		Quality:     "Good",
	},
	"balanced": {
		Key:         "balanced",
		Name:        "text-embedding-004",
		Description: "Balanced performance and quality",
		Dimensions:  768,
		Performance: "Medium",
		Quality:     "High",
	},
	"high_quality": {
		Key:         "high_quality",
		Name:        "gemini-embedding-001",
		Description: "High quality embeddings, slower processing",
		Dimensions:  1536,
		Performance: "Slow",
		Quality:     "Very High",
	},
	"multilingual": {
		Key:         "multilingual",
		Name:        "gemini-embedding-001",
		Description: "Supports 100+ languages",
		Dimensions:  768,
		Performance: "Medium",
		Quality:     "Good",
	},
}

// UnknownModelError is returned for lookups outside the catalog. It names the
// offending key and the valid alternatives; callers must never substitute a
// default silently.
type UnknownModelError struct {
	Key       string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model key: %q (available: %s)", e.Key, strings.Join(e.Available, ", "))
}

// GetEmbeddingModelConfig resolves a catalog key. An empty key resolves to the
// default model.
func GetEmbeddingModelConfig(modelKey string) (ModelConfig, error) {
	if modelKey == "" {
		modelKey = DefaultModelKey
	}

	cfg, ok := embeddingModels[modelKey]
	if !ok {
		return ModelConfig{}, &UnknownModelError{Key: modelKey, Available: AvailableModelKeys()}
	}

	return cfg, nil
}

// AvailableModels returns the full catalog, sorted by key.
func AvailableModels() []ModelConfig {
	models := make([]ModelConfig, 0, len(embeddingModels))
	for _, cfg := range embeddingModels {
		models = append(models, cfg)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Key < models[j].Key })
	return models
}

// AvailableModelKeys returns the catalog keys, sorted.
func AvailableModelKeys() []string {
	keys := make([]string, 0, len(embeddingModels))
	for key := range embeddingModels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
