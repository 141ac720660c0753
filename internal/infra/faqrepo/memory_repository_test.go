package faqrepo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedRecords() []faq.Record {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []faq.Record{
		{Identifier: "Q1.1", Question: "What is the refund policy?", Answer: "Refunds within 30 days.", Category: "Billing", Embedding: []float32{1, 0}, CreatedAt: now},
		{Identifier: "Q1.2", Question: "How do I pay?", Answer: "Use a card.", Category: " billing ", CreatedAt: now.Add(time.Hour)},
		{Identifier: "Q2.1", Question: "Where is the office?", Answer: "Downtown.", Category: "General", Embedding: []float32{0, 1}, CreatedAt: now.Add(2 * time.Hour)},
	}
}

func TestMemoryRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(seedRecords()...)

	all, err := repo.FindAll(ctx, faq.Projection{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Q1.1", all[0].Identifier)
	require.Equal(t, []float32{1, 0}, all[0].Embedding)

	all[0].Embedding[0] = 42
	again, err := repo.FindAll(ctx, faq.Projection{OmitEmbedding: true})
	require.NoError(t, err)
	require.Nil(t, again[0].Embedding)

	rec, found, err := repo.FindOne(ctx, faq.Filter{Question: "Where is the office?"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Q2.1", rec.Identifier)

	_, found, err = repo.FindOne(ctx, faq.Filter{Question: "where is the office?"})
	require.NoError(t, err)
	require.False(t, found)

	n, err := repo.CountDocuments(ctx, faq.Filter{Category: "BILLING"})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestMemoryRepositoryMutations(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(seedRecords()...)

	_, err := repo.InsertOne(ctx, faq.Record{Identifier: "Q1.1", Question: "dup"})
	require.ErrorIs(t, err, faq.ErrDuplicateIdentifier)

	inserted, err := repo.InsertMany(ctx, []faq.Record{{Identifier: "Q1.1"}, {Identifier: "Q3.1", Category: "Other"}})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	require.NoError(t, repo.UpdateEmbedding(ctx, "Q1.2", []float32{0.5, 0.5}))
	rec, found, err := repo.FindOne(ctx, faq.Filter{Identifier: "Q1.2"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []float32{0.5, 0.5}, rec.Embedding)
	require.ErrorIs(t, repo.UpdateEmbedding(ctx, "Q9.9", nil), faq.ErrNotFound)

	removed, err := repo.DeleteMany(ctx, faq.Filter{Category: "billing"})
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	_, found, err = repo.FindOne(ctx, faq.Filter{Identifier: "Q3.1"})
	require.NoError(t, err)
	require.True(t, found)

	removed, err = repo.DeleteMany(ctx, faq.Filter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)
	n, err := repo.CountDocuments(ctx, faq.Filter{})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestOpenMemoryAndUnknownBackend(t *testing.T) {
	repo, err := Open(context.Background(), config.FAQConfig{Backend: "memory"}, discardLogger())
	require.NoError(t, err)
	require.IsType(t, &MemoryRepository{}, repo)
	require.NoError(t, repo.Close(context.Background()))

	_, err = Open(context.Background(), config.FAQConfig{Backend: "sqlite"}, discardLogger())
	require.ErrorContains(t, err, "unknown faq backend")
}

func TestParseVector(t *testing.T) {
	v, err := parseVector("[0.5,-1,2]")
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, -1, 2}, v)

	v, err = parseVector("[]")
	require.NoError(t, err)
	require.Empty(t, v)

	_, err = parseVector("[a]")
	require.Error(t, err)
}

func TestWhereClause(t *testing.T) {
	clause, args := whereClause(faq.Filter{Question: "q", Category: "Billing"})
	require.Equal(t, " WHERE question = $1 AND lower(trim(category)) = lower(trim($2))", clause)
	require.Equal(t, []any{"q", "Billing"}, args)

	clause, args = whereClause(faq.Filter{})
	require.Empty(t, clause)
	require.Empty(t, args)
}
