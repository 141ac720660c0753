package faq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/faq-engine/pkg/util"
)

const defaultCategoryID = 99

// Dataset is the JSON interchange format consumed by Migrate.
type Dataset struct {
	Source    string         `json:"source"`
	Program   string         `json:"program,omitempty"`
	Date      string         `json:"migration_date,omitempty"`
	TotalFAQs int            `json:"total_faqs"`
	FAQs      []DatasetEntry `json:"faqs"`
}

// DatasetEntry is a single FAQ in a Dataset.
type DatasetEntry struct {
	Category   string `json:"category"`
	CategoryID *int   `json:"category_id,omitempty"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// Progress reports how many of total items have been processed.
type Progress func(done, total int)

// MigrateOptions tunes Migrate.
type MigrateOptions struct {
	// QuestionOnly embeds just the question instead of question and answer together.
	QuestionOnly bool
	AddedBy      string
	Progress     Progress
}

// MigrateReport summarises a migration run.
type MigrateReport struct {
	Removed    int64          `json:"removed"`
	Inserted   int            `json:"inserted"`
	FinalCount int64          `json:"finalCount"`
	Categories map[string]int `json:"categories"`
}

// RegenerateOptions tunes RegenerateEmbeddings.
type RegenerateOptions struct {
	Workers  int
	Progress Progress
}

// CacheInvalidator is notified after bulk mutations.
type CacheInvalidator interface {
	InvalidateCache()
}

// Ingestor performs bulk replacement and re-embedding of the store contents. Bulk paths
// bypass duplicate detection.
type Ingestor struct {
	store    Store
	embedder Embedder
	cache    CacheInvalidator
	logger   *slog.Logger
}

// NewIngestor constructs an Ingestor. cache may be nil.
func NewIngestor(store Store, embedder Embedder, cache CacheInvalidator, logger *slog.Logger) *Ingestor {
	return &Ingestor{store: store, embedder: embedder, cache: cache, logger: logger.With("component", "faq.ingest")}
}

// Migrate wipes the store and loads dataset, numbering each category from its category_id.
func (in *Ingestor) Migrate(ctx context.Context, dataset Dataset, opts MigrateOptions) (MigrateReport, error) {
	addedBy := strings.TrimSpace(opts.AddedBy)
	if addedBy == "" {
		addedBy = "Migration Script"
	}
	report := MigrateReport{Categories: make(map[string]int)}

	records := make([]Record, 0, len(dataset.FAQs))
	for i, entry := range dataset.FAQs {
		categoryID := defaultCategoryID
		if entry.CategoryID != nil {
			categoryID = *entry.CategoryID
		}
		report.Categories[entry.Category]++
		text := entry.Question
		if !opts.QuestionOnly {
			text = entry.Question + " " + entry.Answer
		}
		vector, err := in.embedder.Embed(ctx, text)
		if err != nil {
			return report, fmt.Errorf("embed faq %d: %w", i+1, err)
		}
		if isZeroVector(vector) {
			vector = nil
		}
		records = append(records, Record{
			Identifier: Identifier{Category: categoryID, Sequence: report.Categories[entry.Category]}.String(),
			Question:   entry.Question,
			Answer:     entry.Answer,
			Category:   entry.Category,
			Embedding:  vector,
			CreatedAt:  util.NowUTC(),
			AddedBy:    addedBy,
		})
		if opts.Progress != nil {
			opts.Progress(i+1, len(dataset.FAQs))
		}
	}

	removed, err := in.store.DeleteMany(ctx, Filter{})
	if err != nil {
		return report, fmt.Errorf("clear store: %w", err)
	}
	report.Removed = removed
	inserted, err := in.store.InsertMany(ctx, records)
	if err != nil {
		return report, fmt.Errorf("insert faqs: %w", err)
	}
	report.Inserted = inserted
	if report.FinalCount, err = in.store.CountDocuments(ctx, Filter{}); err != nil {
		return report, fmt.Errorf("count faqs: %w", err)
	}
	in.invalidate()
	in.logger.Info("faq migration complete", "removed", report.Removed, "inserted", report.Inserted, "categories", len(report.Categories))
	return report, nil
}

// RegenerateEmbeddings re-embeds every question with bounded concurrency and returns how many
// vectors were stored. Zero vectors are never stored; they clear the record's embedding instead.
func (in *Ingestor) RegenerateEmbeddings(ctx context.Context, opts RegenerateOptions) (int, error) {
	records, err := in.store.FindAll(ctx, Projection{OmitEmbedding: true})
	if err != nil {
		return 0, fmt.Errorf("load faqs: %w", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	var done, updated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rec := range records {
		g.Go(func() error {
			defer func() {
				n := done.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), len(records))
				}
			}()
			if strings.TrimSpace(rec.Question) == "" {
				return nil
			}
			vector, err := in.embedder.Embed(gctx, rec.Question)
			if err != nil {
				return fmt.Errorf("embed %s: %w", rec.Identifier, err)
			}
			if isZeroVector(vector) {
				// clear any vector left by a previous provider so search stays lexical
				if err := in.store.UpdateEmbedding(gctx, rec.Identifier, nil); err != nil {
					return fmt.Errorf("clear %s: %w", rec.Identifier, err)
				}
				return nil
			}
			if err := in.store.UpdateEmbedding(gctx, rec.Identifier, vector); err != nil {
				return fmt.Errorf("update %s: %w", rec.Identifier, err)
			}
			updated.Add(1)
			return nil
		})
	}
	err = g.Wait()
	in.invalidate()
	return int(updated.Load()), err
}

func (in *Ingestor) invalidate() {
	if in.cache != nil {
		in.cache.InvalidateCache()
	}
}
