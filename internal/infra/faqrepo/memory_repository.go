package faqrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

// MemoryRepository is an in-memory faq.Store used for tests/dev. Records keep insertion order.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []faq.Record
	byID    map[string]int
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository(seed ...faq.Record) *MemoryRepository {
	r := &MemoryRepository{byID: make(map[string]int)}
	_, _ = r.InsertMany(context.Background(), seed)
	return r
}

// FindAll implements faq.Store.
func (r *MemoryRepository) FindAll(_ context.Context, proj faq.Projection) ([]faq.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]faq.Record, len(r.records))
	for i, rec := range r.records {
		out[i] = clone(rec, proj.OmitEmbedding)
	}
	return out, nil
}

// FindOne implements faq.Store.
func (r *MemoryRepository) FindOne(_ context.Context, filter faq.Filter) (faq.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if filter.Identifier != "" && filter.Question == "" && filter.Category == "" {
		idx, ok := r.byID[filter.Identifier]
		if !ok {
			return faq.Record{}, false, nil
		}
		return clone(r.records[idx], false), true, nil
	}
	for _, rec := range r.records {
		if matches(rec, filter) {
			return clone(rec, false), true, nil
		}
	}
	return faq.Record{}, false, nil
}

// InsertOne implements faq.Store. Identifiers are unique.
func (r *MemoryRepository) InsertOne(_ context.Context, record faq.Record) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[record.Identifier]; exists {
		return "", faq.ErrDuplicateIdentifier
	}
	r.append(record)
	return record.Identifier, nil
}

// InsertMany implements faq.Store. Records whose identifier already exists are skipped.
func (r *MemoryRepository) InsertMany(_ context.Context, records []faq.Record) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, rec := range records {
		if _, exists := r.byID[rec.Identifier]; exists {
			continue
		}
		r.append(rec)
		inserted++
	}
	return inserted, nil
}

// DeleteMany implements faq.Store.
func (r *MemoryRepository) DeleteMany(_ context.Context, filter faq.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make([]faq.Record, 0, len(r.records))
	var removed int64
	for _, rec := range r.records {
		if matches(rec, filter) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	r.reindex()
	return removed, nil
}

// CountDocuments implements faq.Store.
func (r *MemoryRepository) CountDocuments(_ context.Context, filter faq.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, rec := range r.records {
		if matches(rec, filter) {
			n++
		}
	}
	return n, nil
}

// UpdateEmbedding implements faq.Store.
func (r *MemoryRepository) UpdateEmbedding(_ context.Context, identifier string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[identifier]
	if !ok {
		return faq.ErrNotFound
	}
	r.records[idx].Embedding = append([]float32(nil), embedding...)
	return nil
}

// Close implements Repository.
func (r *MemoryRepository) Close(context.Context) error { return nil }

func (r *MemoryRepository) append(rec faq.Record) {
	r.byID[rec.Identifier] = len(r.records)
	r.records = append(r.records, clone(rec, false))
}

func (r *MemoryRepository) reindex() {
	r.byID = make(map[string]int, len(r.records))
	for i, rec := range r.records {
		r.byID[rec.Identifier] = i
	}
}

func matches(rec faq.Record, filter faq.Filter) bool {
	if filter.Identifier != "" && rec.Identifier != filter.Identifier {
		return false
	}
	if filter.Question != "" && rec.Question != filter.Question {
		return false
	}
	if filter.Category != "" && !strings.EqualFold(strings.TrimSpace(rec.Category), strings.TrimSpace(filter.Category)) {
		return false
	}
	return true
}

func clone(rec faq.Record, omitEmbedding bool) faq.Record {
	if omitEmbedding || rec.Embedding == nil {
		rec.Embedding = nil
		return rec
	}
	rec.Embedding = append([]float32(nil), rec.Embedding...)
	return rec
}

var _ faq.Store = (*MemoryRepository)(nil)
