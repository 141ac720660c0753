package faqstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

func TestMemoryStoreRanksWithinWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.IncrementQuery(ctx, "refund policy", "Refund policy?"))
	require.NoError(t, store.IncrementQuery(ctx, "refund policy", "refund POLICY"))

	clock = clock.AddDate(0, 0, 1)
	require.NoError(t, store.IncrementQuery(ctx, "refund policy", "x"))
	require.NoError(t, store.IncrementQuery(ctx, "refund policy", "y"))
	require.NoError(t, store.IncrementQuery(ctx, "office hours", "Office hours"))
	require.NoError(t, store.IncrementQuery(ctx, "", "ignored"))

	top, err := store.TopQueries(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []faq.TrendingQuery{
		{Query: "Refund policy?", Count: 4},
		{Query: "Office hours", Count: 1},
	}, top)

	clock = clock.AddDate(0, 0, 1)
	top, err = store.TopQueries(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []faq.TrendingQuery{{Query: "Refund policy?", Count: 2}}, top)
}

func TestMemoryStoreBreaksTiesByQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(7)
	require.NoError(t, store.IncrementQuery(ctx, "refund policy", "Refund policy?"))
	require.NoError(t, store.IncrementQuery(ctx, "office hours", "Office hours"))

	top, err := store.TopQueries(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []faq.TrendingQuery{
		{Query: "Office hours", Count: 1},
		{Query: "Refund policy?", Count: 1},
	}, top)
}

func TestMemoryStorePrunesExpiredDays(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(1)
	clock := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.IncrementQuery(ctx, "a", "a"))
	clock = clock.AddDate(0, 0, 3)
	require.NoError(t, store.IncrementQuery(ctx, "b", "b"))
	require.Len(t, store.days, 1)

	top, err := store.TopQueries(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []faq.TrendingQuery{{Query: "b", Count: 1}}, top)
}

func TestWindowDays(t *testing.T) {
	now := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	require.Equal(t, []string{"20240301", "20240229", "20240228"}, windowDays(now, 3))
}
