package faqstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

const defaultWindowDays = 7

// MemoryStore keeps per-day trending counters in process memory for tests/dev.
type MemoryStore struct {
	mu       sync.Mutex
	window   int
	now      func() time.Time
	days     map[string]map[string]int64
	displays map[string]string
}

// NewMemoryStore constructs a store counting queries over the last windowDays days.
func NewMemoryStore(windowDays int) *MemoryStore {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	return &MemoryStore{
		window:   windowDays,
		now:      time.Now,
		days:     make(map[string]map[string]int64),
		displays: make(map[string]string),
	}
}

// IncrementQuery bumps today's counter for a canonical query and records its first display form.
func (s *MemoryStore) IncrementQuery(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	day := dayStamp(s.now())
	counts, ok := s.days[day]
	if !ok {
		counts = make(map[string]int64)
		s.days[day] = counts
	}
	counts[canonical]++
	if _, exists := s.displays[canonical]; !exists && display != "" {
		s.displays[canonical] = display
	}
	s.pruneLocked()
	return nil
}

// TopQueries sums the window's counters and returns the most frequent queries.
func (s *MemoryStore) TopQueries(_ context.Context, limit int) ([]faq.TrendingQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]int64)
	for _, day := range windowDays(s.now(), s.window) {
		for canonical, n := range s.days[day] {
			totals[canonical] += n
		}
	}
	return rankTrending(totals, s.displays, limit), nil
}

func (s *MemoryStore) pruneLocked() {
	keep := make(map[string]struct{}, s.window)
	for _, day := range windowDays(s.now(), s.window) {
		keep[day] = struct{}{}
	}
	for day := range s.days {
		if _, ok := keep[day]; !ok {
			delete(s.days, day)
		}
	}
}

// rankTrending orders totals by count, breaking ties alphabetically.
func rankTrending(totals map[string]int64, displays map[string]string, limit int) []faq.TrendingQuery {
	items := make([]faq.TrendingQuery, 0, len(totals))
	for canonical, count := range totals {
		display := displays[canonical]
		if display == "" {
			display = canonical
		}
		items = append(items, faq.TrendingQuery{Query: display, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Query < items[j].Query
		}
		return items[i].Count > items[j].Count
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func dayStamp(t time.Time) string {
	return t.UTC().Format("20060102")
}

// windowDays lists the day stamps covering the last n days, today first.
func windowDays(now time.Time, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, dayStamp(now.AddDate(0, 0, -i)))
	}
	return out
}

var _ faq.TrendingStore = (*MemoryStore)(nil)
