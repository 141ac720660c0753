package faq

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by stores when an update targets a missing record.
	ErrNotFound = errors.New("faq record not found")
	// ErrDuplicateIdentifier is returned when an insert reuses an existing identifier.
	ErrDuplicateIdentifier = errors.New("faq identifier already exists")
)

// Filter narrows store operations. Zero fields are ignored; an empty filter matches everything.
type Filter struct {
	Identifier string
	Question   string
	// Category matches case-insensitively on the whole value.
	Category string
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return f.Identifier == "" && f.Question == "" && f.Category == ""
}

// Projection controls which fields FindAll materialises.
type Projection struct {
	OmitEmbedding bool
}

// Store is the authoritative persistence collaborator.
type Store interface {
	FindAll(ctx context.Context, proj Projection) ([]Record, error)
	FindOne(ctx context.Context, filter Filter) (Record, bool, error)
	InsertOne(ctx context.Context, record Record) (string, error)
	InsertMany(ctx context.Context, records []Record) (int, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	CountDocuments(ctx context.Context, filter Filter) (int64, error)
	UpdateEmbedding(ctx context.Context, identifier string, embedding []float32) error
}
