package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

// DeterministicEmbedder hashes text into a unit vector without network calls. Identical inputs
// always produce identical vectors, which keeps offline runs and tests reproducible.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEmbedder{dim: dim}
}

// Embed implements faq.Embedder.
func (e *DeterministicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil, ErrEmptyText
	}
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()

	vector := make([]float32, e.dim)
	var norm float64
	for j := range vector {
		seed = seed*1099511628211 + 1469598103934665603
		v := float64(seed%997)/498.5 - 1
		vector[j] = float32(v)
		norm += v * v
	}
	if norm == 0 {
		return vector, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for j := range vector {
		vector[j] *= scale
	}
	return vector, nil
}

// Dimension implements faq.Embedder.
func (e *DeterministicEmbedder) Dimension() int { return e.dim }

// Name implements faq.Embedder.
func (e *DeterministicEmbedder) Name() string { return ProviderDeterministic }

// ZeroEmbedder returns all-zero vectors. The service treats them as "no embedding" so search
// stays lexical-only.
type ZeroEmbedder struct {
	dim int
}

// NewZeroEmbedder constructs the embedder.
func NewZeroEmbedder(dim int) *ZeroEmbedder {
	if dim <= 0 {
		dim = 1024
	}
	return &ZeroEmbedder{dim: dim}
}

// Embed implements faq.Embedder.
func (e *ZeroEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}

// Dimension implements faq.Embedder.
func (e *ZeroEmbedder) Dimension() int { return e.dim }

// Name implements faq.Embedder.
func (e *ZeroEmbedder) Name() string { return ProviderNone }

var (
	_ faq.Embedder = (*DeterministicEmbedder)(nil)
	_ faq.Embedder = (*ZeroEmbedder)(nil)
)
