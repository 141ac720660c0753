package faq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	mu       sync.Mutex
	records  []Record
	findErr  error
	findAlls int
}

func newFakeStore(records ...Record) *fakeStore {
	return &fakeStore{records: append([]Record(nil), records...)}
}

func (s *fakeStore) FindAll(_ context.Context, proj Projection) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findAlls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	if proj.OmitEmbedding {
		for i := range out {
			out[i].Embedding = nil
		}
	}
	return out, nil
}

func (s *fakeStore) FindOne(_ context.Context, filter Filter) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return Record{}, false, s.findErr
	}
	for _, rec := range s.records {
		if matches(rec, filter) {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

func (s *fakeStore) InsertOne(_ context.Context, record Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.Identifier == record.Identifier {
			return "", ErrDuplicateIdentifier
		}
	}
	s.records = append(s.records, record)
	return record.Identifier, nil
}

func (s *fakeStore) InsertMany(_ context.Context, records []Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return len(records), nil
}

func (s *fakeStore) DeleteMany(_ context.Context, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var removed int64
	for _, rec := range s.records {
		if matches(rec, filter) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return removed, nil
}

func (s *fakeStore) CountDocuments(_ context.Context, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.records {
		if matches(rec, filter) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) UpdateEmbedding(_ context.Context, identifier string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].Identifier == identifier {
			s.records[i].Embedding = embedding
			return nil
		}
	}
	return ErrNotFound
}

func (s *fakeStore) all() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

func matches(rec Record, filter Filter) bool {
	if filter.Identifier != "" && rec.Identifier != filter.Identifier {
		return false
	}
	if filter.Question != "" && rec.Question != filter.Question {
		return false
	}
	if filter.Category != "" && !strings.EqualFold(rec.Category, filter.Category) {
		return false
	}
	return true
}

// fakeEmbedder maps known texts to fixed vectors and everything else to fallback.
type fakeEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    int
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func (e *fakeEmbedder) Dimension() int { return len(e.fallback) }
func (e *fakeEmbedder) Name() string   { return "fake" }

type fakeTrending struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (t *fakeTrending) IncrementQuery(_ context.Context, canonical, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts == nil {
		t.counts = make(map[string]int64)
	}
	t.counts[canonical]++
	return nil
}

func (t *fakeTrending) TopQueries(_ context.Context, limit int) ([]TrendingQuery, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TrendingQuery, 0, len(t.counts))
	for q, n := range t.counts {
		out = append(out, TrendingQuery{Query: q, Count: n})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeExports struct {
	keys []string
	err  error
}

func (e *fakeExports) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.keys = append(e.keys, key)
	return "memory://" + key, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
