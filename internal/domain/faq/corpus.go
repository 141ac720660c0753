package faq

import (
	"context"
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable view of the store contents at load time.
type Snapshot struct {
	Version uint64
	Records []Record

	maxFeatures int
	lexOnce     sync.Once
	lexical     *LexicalIndex
}

// Lexical returns the TF-IDF index built from exactly this snapshot, building it on first use.
func (s *Snapshot) Lexical() *LexicalIndex {
	s.lexOnce.Do(func() {
		questions := make([]string, len(s.Records))
		for i, rec := range s.Records {
			questions[i] = rec.Question
		}
		s.lexical = BuildLexicalIndex(s.Version, questions, s.maxFeatures)
	})
	return s.lexical
}

// HasEmbeddings reports whether any record carries a vector.
func (s *Snapshot) HasEmbeddings() bool {
	for _, rec := range s.Records {
		if rec.HasEmbedding() {
			return true
		}
	}
	return false
}

// Corpus caches the store contents behind a version counter.
//
// Loads and invalidations are not serialized. Publication is atomic, so readers never see a
// partially built slice, but a load that raced with Invalidate may publish a snapshot tagged
// with the pre-invalidation version. Such a snapshot is served to the caller that loaded it and
// is replaced on the next access because its version no longer matches.
type Corpus struct {
	store       Store
	maxFeatures int

	version atomic.Uint64
	current atomic.Pointer[Snapshot]
}

// NewCorpus constructs an empty corpus over store.
func NewCorpus(store Store, maxFeatures int) *Corpus {
	return &Corpus{store: store, maxFeatures: maxFeatures}
}

// EnsureLoaded returns the current snapshot, fetching all records when none is current.
// A store failure publishes nothing and is returned to the caller.
func (c *Corpus) EnsureLoaded(ctx context.Context) (*Snapshot, error) {
	version := c.version.Load()
	if snap := c.current.Load(); snap != nil && snap.Version == version {
		return snap, nil
	}
	records, err := c.store.FindAll(ctx, Projection{})
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Version: version, Records: records, maxFeatures: c.maxFeatures}
	c.current.Store(snap)
	return snap, nil
}

// Invalidate bumps the version and drops the published snapshot.
func (c *Corpus) Invalidate() {
	c.version.Add(1)
	c.current.Store(nil)
}

// Version returns the current corpus version.
func (c *Corpus) Version() uint64 {
	return c.version.Load()
}
