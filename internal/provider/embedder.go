package provider

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
	"golang.org/x/time/rate"
)

// Embedding task prefixes understood by nomic-style embedding models. Indexing
// uses document mode, querying uses query mode; the two are never mixed within
// one ranked list.
const (
	documentPrefix = "search_document: "
	queryPrefix    = "search_query: "
)

// EmbedderConfig configures the Ollama embedding client.
type EmbedderConfig struct {
	BaseURL   string
	Model     string
	BatchSize int
	RateLimit float64 // batches per second during bulk indexing
	Retry     Policy
}

// Embedder produces document-mode and query-mode embeddings via Ollama.
type Embedder struct {
	llm       *ollama.LLM
	batchSize int
	limiter   *rate.Limiter
	retry     Policy
}

// NewEmbedder creates the embedding client.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2.0
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultPolicy()
	}

	llm, err := ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	return &Embedder{
		llm:       llm,
		batchSize: cfg.BatchSize,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		retry:     cfg.Retry,
	}, nil
}

// EmbedDocuments embeds chunk texts in document mode. Batches are paced by the
// rate limiter and each batch call retries transient failures; a failed batch
// fails the whole ingest so indexes are never partially built.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		batch := make([]string, 0, end-start)
		for _, t := range texts[start:end] {
			batch = append(batch, documentPrefix+t)
		}

		var embeddings [][]float32
		err := e.retry.Do(ctx, func() error {
			var embedErr error
			embeddings, embedErr = e.llm.CreateEmbedding(ctx, batch)
			return embedErr
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("embed batch %d-%d: got %d embeddings for %d texts", start, end, len(embeddings), len(batch))
		}
		out = append(out, embeddings...)
	}

	return out, nil
}

// EmbedQuery embeds a question in query mode.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var embeddings [][]float32
	err := e.retry.Do(ctx, func() error {
		var embedErr error
		embeddings, embedErr = e.llm.CreateEmbedding(ctx, []string{queryPrefix + text})
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embed query: empty response")
	}
	return embeddings[0], nil
}
