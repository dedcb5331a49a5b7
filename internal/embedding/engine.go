// Package embedding generates vector embeddings for code chunks and
// memory facts, component C: "the embedder is a trait: embed(texts,
// task_type) -> Vec<[f32; D]>."
package embedding

import (
	"context"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mlog"
)

// Embedder generates vector embeddings for text, parameterized by a
// TaskType the provider may or may not honor.
type Embedder interface {
	Embed(ctx context.Context, text string, task TaskType) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error)
	Dimensions() int
	Name() string
}

// HealthChecker is an optional capability: providers that implement it
// let the circuit breaker and fast lane verify reachability before
// committing to a batch.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config selects and configures a provider.
type Config struct {
	Provider       string
	OllamaEndpoint string
	OllamaModel    string
	GenAIAPIKey    string
	GenAIModel     string
	Dimensions     int
}

// DefaultConfig mirrors the teacher's embedding.DefaultConfig default
// provider choice (local Ollama, no outbound dependency by default).
func DefaultConfig() Config {
	return Config{
		Provider:       "ollama",
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		GenAIModel:     "gemini-embedding-001",
		Dimensions:     768,
	}
}

// New constructs the configured provider. A "none" provider returns a
// nil Embedder and no error: callers that rely on semantic search must
// treat a nil Embedder as "disabled" rather than an unconfigured
// error, per spec §6 ("embedding.provider = <name|none> — none
// disables semantic path").
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "none", "":
		mlog.Get(mlog.CategoryEmbedding).Info("embedding provider disabled (provider=none); semantic search and the fast-lane drain loop are inactive")
		return nil, nil
	case "ollama":
		mlog.Get(mlog.CategoryEmbedding).Info("initializing ollama embedder: endpoint=%s model=%s", cfg.OllamaEndpoint, cfg.OllamaModel)
		return NewOllamaEmbedder(cfg.OllamaEndpoint, cfg.OllamaModel), nil
	case "genai":
		mlog.Get(mlog.CategoryEmbedding).Info("initializing genai embedder: model=%s", cfg.GenAIModel)
		return NewGenAIEmbedder(cfg.GenAIAPIKey, cfg.GenAIModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q (want ollama, genai, or none)", cfg.Provider)
	}
}
