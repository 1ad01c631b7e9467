package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
)

type IndexMatch struct {
	DocID    string
	Score    float64
	Metadata map[string]interface{}
}

// VectorIndex persists per-document embeddings for cross-document
// nearest-neighbor search. Resumes and job descriptions live in separate
// namespaces, and each namespace is further keyed by the embedding model so
// vectors from different models are never compared. Writes are best-effort
// caching; pairwise analysis never depends on the index.
type VectorIndex interface {
	Upsert(ctx context.Context, kind models.DocumentKind, docID string, vector []float32, metadata map[string]interface{}) error
	Query(ctx context.Context, kind models.DocumentKind, vector []float32, topK int) ([]IndexMatch, error)
	Delete(ctx context.Context, kind models.DocumentKind, docID string) error
}

type qdrantIndex struct {
	client   *qdrant.Client
	prefix   string
	embedder EmbeddingService
	logger   *zap.Logger

	mu      sync.Mutex
	ensured map[string]bool
}

func NewQdrantIndex(urlStr, apiKey, collectionPrefix string, embedder EmbeddingService, logger *zap.Logger) (VectorIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port defaults to 6334.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:   client,
		prefix:   collectionPrefix,
		embedder: embedder,
		logger:   logger,
		ensured:  make(map[string]bool),
	}, nil
}

var collectionSuffix = map[models.DocumentKind]string{
	models.KindResume:         "resumes",
	models.KindJobDescription: "job_descriptions",
}

// collectionName embeds the model key, so a model switch transparently starts
// a fresh namespace instead of mixing incomparable vectors.
func (q *qdrantIndex) collectionName(kind models.DocumentKind) string {
	model := q.embedder.ActiveModel()
	return fmt.Sprintf("%s_%s_%s", q.prefix, collectionSuffix[kind], model.Key)
}

func (q *qdrantIndex) ensureCollection(ctx context.Context, name string, dimensions int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ensured[name] {
		return nil
	}

	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !exists {
		err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dimensions),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		q.logger.Info("qdrant collection created", zap.String("collection", name))
	}

	q.ensured[name] = true
	return nil
}

// Upsert implements VectorIndex.
func (q *qdrantIndex) Upsert(ctx context.Context, kind models.DocumentKind, docID string, vector []float32, metadata map[string]interface{}) error {
	name := q.collectionName(kind)
	if err := q.ensureCollection(ctx, name, len(vector)); err != nil {
		return err
	}

	payload := map[string]interface{}{
		"doc_id": docID,
		"kind":   string(kind),
		"model":  q.embedder.ActiveModel().Key,
	}
	for key, value := range metadata {
		payload[key] = value
	}

	point := &qdrant.PointStruct{
		Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: docID}},
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(payload),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Query implements VectorIndex. Scores come back rescaled into [0,1] to match
// the in-process similarity engine.
func (q *qdrantIndex) Query(ctx context.Context, kind models.DocumentKind, vector []float32, topK int) ([]IndexMatch, error) {
	name := q.collectionName(kind)
	if err := q.ensureCollection(ctx, name, len(vector)); err != nil {
		return nil, err
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	matches := make([]IndexMatch, 0, len(points))
	for _, point := range points {
		match := IndexMatch{
			Score:    rescaleCosine(float64(point.Score)),
			Metadata: make(map[string]interface{}),
		}

		for key, value := range point.Payload {
			match.Metadata[key] = valueToAny(value)
		}
		if docID, ok := match.Metadata["doc_id"].(string); ok {
			match.DocID = docID
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// Delete implements VectorIndex.
func (q *qdrantIndex) Delete(ctx context.Context, kind models.DocumentKind, docID string) error {
	name := q.collectionName(kind)

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", docID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: name,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// rescaleCosine maps a raw cosine score from [-1,1] into [0,1], the same
// formula the similarity engine uses.
func rescaleCosine(score float64) float64 {
	rescaled := (score + 1) / 2
	if rescaled < 0 {
		return 0
	}
	if rescaled > 1 {
		return 1
	}
	return rescaled
}

func valueToAny(value *qdrant.Value) interface{} {
	switch kind := value.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return value.String()
	}
}
