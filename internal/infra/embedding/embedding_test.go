package embedding

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/llm/chatgpt"
	"github.com/yanqian/faq-engine/pkg/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSelectsProvider(t *testing.T) {
	cases := []struct {
		name     string
		cfg      Config
		wantName string
	}{
		{name: "deterministic", cfg: Config{Provider: "deterministic", Dimension: 8}, wantName: ProviderDeterministic},
		{name: "none", cfg: Config{Provider: "none", Dimension: 8}, wantName: ProviderNone},
		{name: "unknown falls back", cfg: Config{Provider: "mystery", Dimension: 8}, wantName: ProviderNone},
		{name: "local", cfg: Config{Provider: "LOCAL", Model: "bge", Dimension: 8}, wantName: "local:bge"},
		{name: "voyage default model", cfg: Config{Provider: "anthropic", APIKey: "k", Model: "BAAI/bge", Dimension: 8}, wantName: "voyage:voyage-2"},
		{name: "openai", cfg: Config{Provider: "openai", APIKey: "k", Model: "text-embedding-3-large", Dimension: 8, RatePerSecond: 5, CacheSize: 4}, wantName: "openai:text-embedding-3-large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emb, err := New(tc.cfg, testLogger())
			require.NoError(t, err)
			require.Equal(t, tc.wantName, emb.Name())
			require.Equal(t, 8, emb.Dimension())
		})
	}
}

func TestNewRequiresKeysForRemoteProviders(t *testing.T) {
	_, err := New(Config{Provider: "voyage"}, testLogger())
	require.Error(t, err)
	_, err = New(Config{Provider: "openai"}, testLogger())
	require.Error(t, err)
}

func TestDeterministicEmbedderIsStableAndNormalised(t *testing.T) {
	emb := NewDeterministicEmbedder(16)
	a, err := emb.Embed(context.Background(), "How do I reset my password?")
	require.NoError(t, err)
	b, err := emb.Embed(context.Background(), "  how do i reset my password?  ")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.InDelta(t, 1.0, faq.Cosine(a, a), 1e-5)

	c, err := emb.Embed(context.Background(), "Where is the office?")
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	_, err = emb.Embed(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestZeroEmbedder(t *testing.T) {
	v, err := NewZeroEmbedder(4).Embed(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, []float32{0, 0, 0, 0}, v)
}

type countingEmbedder struct {
	calls atomic.Int32
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) Dimension() int { return 2 }
func (c *countingEmbedder) Name() string   { return "counting" }

func TestCachedReusesVectors(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCached(inner, 2)
	require.NoError(t, err)

	first, err := cached.Embed(context.Background(), "abc")
	require.NoError(t, err)
	first[0] = 99

	second, err := cached.Embed(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, []float32{3, 1}, second)
	require.EqualValues(t, 1, inner.calls.Load())

	_, _ = cached.Embed(context.Background(), "d")
	_, _ = cached.Embed(context.Background(), "ef")
	require.Equal(t, 2, cached.Len())
	_, _ = cached.Embed(context.Background(), "abc")
	require.EqualValues(t, 4, inner.calls.Load())
}

func TestRateLimitedHonoursContext(t *testing.T) {
	limited := NewRateLimited(&countingEmbedder{}, 0.001, 1)
	_, err := limited.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Embed(ctx, "second")
	require.Error(t, err)
}

func TestLocalEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "bge", body["model"])
		require.Equal(t, "hello", body["prompt"])
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2}})
	}))
	defer srv.Close()

	v, err := NewLocalEmbedder(srv.URL, "bge", 2, time.Second).Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2}, v)
}

func TestLocalEmbedderSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLocalEmbedder(srv.URL, "bge", 2, time.Second).Embed(context.Background(), "hello")
	require.ErrorContains(t, err, "status=404")
}

func TestVoyageEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"hello"}, body.Input)
		require.Equal(t, "voyage-large-2", body.Model)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"embedding": []float32{1, 0}}}})
	}))
	defer srv.Close()

	emb, err := NewVoyageEmbedder("secret", srv.URL, "voyage-large-2", 2, time.Second)
	require.NoError(t, err)
	v, err := emb.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0}, v)
}

func TestOpenAIEmbedderTruncatesLongInput(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatgpt.EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Input, 1)
		received = body.Input[0]
		require.Equal(t, 4, body.Dimensions)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":  []map[string]any{{"index": 0, "embedding": []float32{1, 2, 3, 4}}},
			"usage": map[string]int{"prompt_tokens": 5, "total_tokens": 5},
		})
	}))
	defer srv.Close()

	client, err := chatgpt.NewClient("k", srv.URL, time.Second)
	require.NoError(t, err)
	usage := &metrics.UsageCounter{}
	emb := NewOpenAIEmbedder(client, "text-embedding-3-small", 4, 5, usage, testLogger())

	long := strings.Repeat("refund policy ", 50)
	v, err := emb.Embed(context.Background(), long)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3, 4}, v)
	require.Equal(t, metrics.TokenUsage{Requests: 1, PromptTokens: 5, TotalTokens: 5}, usage.Snapshot())
	if emb.enc == nil {
		t.Skip("tokenizer data unavailable offline")
	}
	require.NotEmpty(t, received)
	require.Less(t, len(received), len(long))
}
