// Package ai produces embedding vectors via Google Generative AI.
package ai

import (
	"context"
	"fmt"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/sevap8/ai-platform/internal/logger"
)

// Gemini caps batch embedding requests at 100 contents.
const embedBatchLimit = 100

// Embedder wraps the Gemini embeddings API with client-side rate
// limiting and a circuit breaker so a flapping upstream degrades
// ingestion instead of hammering the API.
type Embedder struct {
	client      *genai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

// NewEmbedder creates an Embedder using the given API key and model
// name (e.g. "text-embedding-004").
func NewEmbedder(ctx context.Context, apiKey, model string) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiEmbeddings",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// Free tier allows ~100 embedding RPM; stay under it.
	limiter := rate.NewLimiter(rate.Limit(90.0/60.0), 10)

	return &Embedder{
		client:      client,
		model:       model,
		breaker:     breaker,
		rateLimiter: limiter,
	}, nil
}

// EmbedText returns the embedding vector for a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts preserving input order. Requests are split
// into API-sized batches.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += embedBatchLimit {
		end := min(start+embedBatchLimit, len(texts))

		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		batch := texts[start:end]
		result, err := e.breaker.Execute(func() (interface{}, error) {
			model := e.client.EmbeddingModel(e.model)
			req := model.NewBatch()
			for _, text := range batch {
				req.AddContent(genai.Text(text))
			}
			resp, err := model.BatchEmbedContents(ctx, req)
			if err != nil {
				return nil, err
			}
			if len(resp.Embeddings) != len(batch) {
				return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Embeddings))
			}
			return resp, nil
		})
		if err != nil {
			if err == gobreaker.ErrOpenState {
				return nil, fmt.Errorf("embeddings temporarily unavailable: %w", err)
			}
			return nil, fmt.Errorf("batch embed [%d:%d] failed: %w", start, end, err)
		}

		for _, emb := range result.(*genai.BatchEmbedContentsResponse).Embeddings {
			if emb == nil {
				return nil, fmt.Errorf("no embedding returned")
			}
			vectors = append(vectors, emb.Values)
		}
	}

	return vectors, nil
}

// Close releases the underlying genai client.
func (e *Embedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
