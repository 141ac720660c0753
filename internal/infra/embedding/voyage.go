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

const (
	defaultVoyageURL   = "https://api.voyageai.com/v1"
	defaultVoyageModel = "voyage-2"
)

// VoyageEmbedder calls the Voyage AI embeddings API.
type VoyageEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// NewVoyageEmbedder constructs the embedder. Models not named voyage-* fall back to voyage-2.
func NewVoyageEmbedder(apiKey, baseURL, model string, dimension int, timeout time.Duration) (*VoyageEmbedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("voyage api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultVoyageURL
	}
	if !strings.HasPrefix(model, "voyage") {
		model = defaultVoyageModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VoyageEmbedder{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Embed implements faq.Embedder.
func (e *VoyageEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	body, err := json.Marshal(map[string]any{"input": []string{text}, "model": e.model})
	if err != nil {
		return nil, fmt.Errorf("encode voyage request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build voyage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request voyage embedding: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("voyage embedding failed: status=%d body=%s", resp.StatusCode, string(payload))
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode voyage response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, errors.New("voyage returned no embeddings")
	}
	return out.Data[0].Embedding, nil
}

// Dimension implements faq.Embedder.
func (e *VoyageEmbedder) Dimension() int { return e.dimension }

// Name implements faq.Embedder.
func (e *VoyageEmbedder) Name() string { return ProviderVoyage + ":" + e.model }

var _ faq.Embedder = (*VoyageEmbedder)(nil)
