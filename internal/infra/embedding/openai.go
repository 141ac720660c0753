package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/llm/chatgpt"
	"github.com/yanqian/faq-engine/pkg/metrics"
)

const (
	defaultOpenAIModel = "text-embedding-3-small"
	fallbackEncoding   = "cl100k_base"
	defaultMaxTokens   = 8000
)

// OpenAIEmbedder calls the OpenAI-compatible embeddings API, truncating inputs to the model's
// token budget.
type OpenAIEmbedder struct {
	client    *chatgpt.Client
	model     string
	dimension int
	maxTokens int
	usage     *metrics.UsageCounter
	logger    *slog.Logger

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

// NewOpenAIEmbedder constructs an embedder backed by the OpenAI client.
func NewOpenAIEmbedder(client *chatgpt.Client, model string, dimension, maxTokens int, usage *metrics.UsageCounter, logger *slog.Logger) *OpenAIEmbedder {
	model = strings.TrimSpace(model)
	if model == "" || !strings.HasPrefix(model, "text-embedding") {
		model = defaultOpenAIModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenAIEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
		maxTokens: maxTokens,
		usage:     usage,
		logger:    logger.With("provider", ProviderOpenAI),
	}
}

// Embed implements faq.Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	req := chatgpt.EmbeddingRequest{Model: e.model, Input: []string{e.truncate(text)}}
	if strings.HasPrefix(e.model, "text-embedding-3") {
		req.Dimensions = e.dimension
	}
	resp, err := e.client.CreateEmbedding(ctx, req)
	if err != nil {
		return nil, err
	}
	e.usage.Add(resp.Usage.PromptTokens, resp.Usage.TotalTokens)
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embeddings")
	}
	return resp.Data[0].Embedding, nil
}

// Dimension implements faq.Embedder.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Name implements faq.Embedder.
func (e *OpenAIEmbedder) Name() string { return ProviderOpenAI + ":" + e.model }

func (e *OpenAIEmbedder) truncate(text string) string {
	e.encOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel(e.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding(fallbackEncoding)
		}
		if err != nil {
			e.logger.Warn("tokenizer unavailable, sending untruncated input", "error", err)
			return
		}
		e.enc = enc
	})
	if e.enc == nil {
		return text
	}
	tokens := e.enc.Encode(text, nil, nil)
	if len(tokens) <= e.maxTokens {
		return text
	}
	e.logger.Debug("truncating embedding input", "tokens", len(tokens), "limit", e.maxTokens)
	return e.enc.Decode(tokens[:e.maxTokens])
}

var _ faq.Embedder = (*OpenAIEmbedder)(nil)
