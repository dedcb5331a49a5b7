package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// genaiMaxBatch is the API's hard batch-size cap (spec §4.C'S
// MAX_BATCH_SIZE for this provider), grounded on the teacher's
// internal/embedding/genai.go maxBatchSize.
const genaiMaxBatch = 100

// genaiDimensions matches the teacher's chosen model's output size;
// gemini-embedding-001 defaults to 3072 but Mira pins it down via
// OutputDimensionality so the code store's fixed-dimension vec table
// assumption holds regardless of model defaults changing upstream.
const genaiDimensions = 3072

// GenAIEmbedder generates embeddings via Google's Gemini API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenAIEmbedder(apiKey, model string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, mkerr.New(mkerr.InvalidArgument, "genai api key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, mkerr.Wrap(mkerr.ProviderUnavailable, err, "genai client init failed")
	}
	return &GenAIEmbedder{client: client, model: model}, nil
}

func (e *GenAIEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text}, task)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, mkerr.New(mkerr.ProviderUnavailable, "genai returned no embeddings")
	}
	return vecs[0], nil
}

func (e *GenAIEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) <= genaiMaxBatch {
		return e.embedChunk(ctx, texts)
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += genaiMaxBatch {
		end := start + genaiMaxBatch
		if end > len(texts) {
			end = len(texts)
		}
		chunk, err := e.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("genai batch [%d:%d]: %w", start, end, err)
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (e *GenAIEmbedder) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(genaiDimensions)
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		mlog.Get(mlog.CategoryEmbedding).Warn("genai embed failed: %v", err)
		return nil, mkerr.Wrap(mkerr.ProviderUnavailable, err, "genai embed request failed")
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

func (e *GenAIEmbedder) Dimensions() int { return genaiDimensions }
func (e *GenAIEmbedder) Name() string    { return "genai:" + e.model }

// HealthCheck issues a minimal embed call to verify reachability.
func (e *GenAIEmbedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, "health check", TaskSemanticSimilarity)
	return err
}
