package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

// Cached memoises embeddings by text hash in a bounded LRU.
type Cached struct {
	next  faq.Embedder
	cache *lru.Cache[string, []float32]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next faq.Embedder, size int) (*Cached, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Embed implements faq.Embedder. Returned slices are copies so callers may mutate them.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		return append([]float32(nil), v...), nil
	}
	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]float32(nil), v...))
	return v, nil
}

// Len reports how many vectors are cached.
func (c *Cached) Len() int { return c.cache.Len() }

// Dimension implements faq.Embedder.
func (c *Cached) Dimension() int { return c.next.Dimension() }

// Name implements faq.Embedder.
func (c *Cached) Name() string { return c.next.Name() }

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// RateLimited throttles calls to a remote provider.
type RateLimited struct {
	next    faq.Embedder
	limiter *rate.Limiter
}

// NewRateLimited allows rps requests per second with the given burst.
func NewRateLimited(next faq.Embedder, rps float64, burst int) *RateLimited {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Embed implements faq.Embedder, waiting for a token or ctx cancellation.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return r.next.Embed(ctx, text)
}

// Dimension implements faq.Embedder.
func (r *RateLimited) Dimension() int { return r.next.Dimension() }

// Name implements faq.Embedder.
func (r *RateLimited) Name() string { return r.next.Name() }

var (
	_ faq.Embedder = (*Cached)(nil)
	_ faq.Embedder = (*RateLimited)(nil)
)
