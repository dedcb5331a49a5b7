package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ConaryLabs/mira/internal/mkerr"
)

// ollamaDimensions matches the teacher's chosen default model
// (embeddinggemma); Ollama's API doesn't report dimensionality up
// front, so this is fixed per-model rather than read from a response.
const ollamaDimensions = 768

// OllamaEmbedder generates embeddings via a local Ollama server.
type OllamaEmbedder struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaEmbedder(endpoint, model string) *OllamaEmbedder {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	if model == "" {
		model = "embeddinggemma"
	}
	return &OllamaEmbedder{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed ignores task since Ollama's embeddings API has no task-type
// concept (unlike GenAI's, see TaskType doc).
func (e *OllamaEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, mkerr.Wrap(mkerr.ProviderUnavailable, err, "ollama request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mkerr.New(mkerr.ProviderUnavailable, fmt.Sprintf("ollama returned status %d", resp.StatusCode))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, mkerr.New(mkerr.ProviderUnavailable, "ollama returned an empty embedding")
	}
	return out.Embedding, nil
}

// EmbedBatch has no batch endpoint in Ollama's embeddings API, so each
// text is requested sequentially; the caller's batcher bounds
// concurrency across calls to this method instead.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text, task)
		if err != nil {
			return nil, fmt.Errorf("ollama embed [%d]: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *OllamaEmbedder) Dimensions() int { return ollamaDimensions }
func (e *OllamaEmbedder) Name() string    { return "ollama:" + e.model }

// HealthCheck issues a minimal embed call to verify the server is up
// and the model is loaded.
func (e *OllamaEmbedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, "health check", TaskSemanticSimilarity)
	return err
}
