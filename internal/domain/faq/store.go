package faq

import "context"

// TrendingStore records search traffic for the trending endpoint.
type TrendingStore interface {
	IncrementQuery(ctx context.Context, canonical, display string) error
	TopQueries(ctx context.Context, limit int) ([]TrendingQuery, error)
}

// ExportStorage persists generated CSV exports.
type ExportStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (string, error)
}

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Name() string
}
