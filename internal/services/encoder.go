package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"resumatch/resume-matcher/internal/config"
)

type geminiEncoder struct {
	client *genai.Client
	model  config.ModelConfig
}

// NewGeminiEncoderFactory returns an EncoderFactory backed by the Gemini
// embedding API. The client is created per factory call so a model switch
// starts from a clean slate.
func NewGeminiEncoderFactory(apiKey string) EncoderFactory {
	return func(model config.ModelConfig) (Encoder, error) {
		ctx := context.Background()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}

		return &geminiEncoder{
			client: client,
			model:  model,
		}, nil
	}
}

// Encode implements Encoder.
func (g *geminiEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(g.model.Dimensions)
	result, err := g.client.Models.EmbedContent(ctx, g.model.Name, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d embeddings", len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("empty embedding result at index %d", i)
		}
		vectors[i] = embedding.Values
	}

	return vectors, nil
}
