// Package vectorstore wraps the official Qdrant Go client with the
// application-level operations the platform needs: collection
// bootstrap, chunk upserts, similarity search and per-document delete.
package vectorstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/sevap8/ai-platform/internal/chunking"
	"github.com/sevap8/ai-platform/internal/logger"
	"github.com/sevap8/ai-platform/models"
)

const upsertBatchSize = 200

type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
	Dimensions int
}

// Client provides vector storage backed by Qdrant.
type Client struct {
	api *qdrant.Client
	cfg Config
}

// NewClient connects to Qdrant and fails fast if the service is
// unreachable.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	api, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant client: %w", err)
	}

	c := &Client{api: api, cfg: cfg}
	if err := c.healthCheck(); err != nil {
		return nil, err
	}

	logger.Info("Qdrant client connected", "host", cfg.Host, "port", cfg.Port, "collection", cfg.Collection)
	return c, nil
}

func (c *Client) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := c.api.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

// EnsureCollection creates the configured collection if it does not
// exist yet. Safe to call on every startup.
func (c *Client) EnsureCollection(ctx context.Context) error {
	collections, err := c.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if slices.Contains(collections, c.cfg.Collection) {
		return nil
	}

	logger.Info("Creating qdrant collection", "collection", c.cfg.Collection, "dimensions", c.cfg.Dimensions)

	err = c.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(c.cfg.Dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", c.cfg.Collection, err)
	}
	return nil
}

// UpsertChunks stores the embedded chunks of one document. Point IDs
// are fresh UUIDs; the chunk identity lives in the payload so a whole
// document can be deleted by its id.
func (c *Client) UpsertChunks(ctx context.Context, documentID string, chunks []chunking.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload := chunk.Metadata()
		payload["content"] = chunk.Content
		payload["chunk_id"] = chunk.ID
		payload["document_id"] = documentID

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	wait := true
	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		_, err := c.api.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: c.cfg.Collection,
			Points:         points[start:end],
			Wait:           &wait,
		})
		if err != nil {
			return fmt.Errorf("upsert failed at [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// Search returns the topK most similar chunks for a query vector.
func (c *Client) Search(ctx context.Context, vector []float32, topK int) ([]models.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}

	limit := uint64(topK)
	resp, err := c.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]models.QueryResult, 0, len(resp))
	for _, point := range resp {
		results = append(results, scoredPointToResult(point))
	}
	return results, nil
}

// DeleteDocument removes every point belonging to a document.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	wait := true
	_, err := c.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: c.cfg.Collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("document_id", documentID),
					},
				},
			},
		},
		Wait: &wait,
	})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	return nil
}

func scoredPointToResult(point *qdrant.ScoredPoint) models.QueryResult {
	result := models.QueryResult{
		Score:    float64(point.Score),
		Metadata: map[string]any{},
	}
	for key, value := range point.Payload {
		switch key {
		case "content":
			result.Content = value.GetStringValue()
		case "chunk_id":
			result.ChunkID = value.GetStringValue()
		case "document_id":
			result.DocumentID = value.GetStringValue()
		case "source":
			result.Metadata["source"] = value.GetStringValue()
		case "page":
			result.Metadata["page"] = value.GetIntegerValue()
		case "chunk_num":
			result.Metadata["chunk_num"] = value.GetIntegerValue()
		}
	}
	return result
}
