package exportstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

// MemoryStorage keeps exports in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Put implements faq.ExportStorage.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return "memory://" + key, nil
}

// Get returns a stored export.
func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("export %s not found", key)
	}
	return append([]byte(nil), data...), nil
}

var _ faq.ExportStorage = (*MemoryStorage)(nil)
