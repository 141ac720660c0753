package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

const defaultLocalURL = "http://localhost:11434"

// LocalEmbedder calls a model server on the host speaking the Ollama /api/embeddings protocol.
type LocalEmbedder struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// NewLocalEmbedder constructs the embedder.
func NewLocalEmbedder(baseURL, model string, dimension int, timeout time.Duration) *LocalEmbedder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultLocalURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LocalEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Embed implements faq.Embedder.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	body, err := json.Marshal(map[string]string{"model": e.model, "prompt": text})
	if err != nil {
		return nil, fmt.Errorf("encode local request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build local request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request local embedding: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("local embedding failed: status=%d body=%s", resp.StatusCode, string(payload))
	}
	var out struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode local response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, errors.New("local model returned an empty embedding")
	}
	return out.Embedding, nil
}

// Dimension implements faq.Embedder.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

// Name implements faq.Embedder.
func (e *LocalEmbedder) Name() string { return ProviderLocal + ":" + e.model }

var _ faq.Embedder = (*LocalEmbedder)(nil)
