package faq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/yanqian/faq-engine/pkg/errors"
	"github.com/yanqian/faq-engine/pkg/util"
)

// Service exposes FAQ search and curation.
type Service interface {
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	AddRecord(ctx context.Context, req AddRequest) AddResponse
	InvalidateCache()
	Trending(ctx context.Context) ([]TrendingQuery, error)
	Recent(ctx context.Context, n int) ([]Record, error)
	Export(ctx context.Context, req ExportRequest) (ExportResult, error)
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	cfg      Config
	store    Store
	trending TrendingStore
	exports  ExportStorage
	embedder Embedder
	corpus   *Corpus
	ranker   *Ranker
	detector *DuplicateDetector
	logger   *slog.Logger
}

// NewService wires up the FAQ domain.
func NewService(cfg Config, store Store, trending TrendingStore, exports ExportStorage, embedder Embedder, logger *slog.Logger) Service {
	cfg = cfg.withDefaults()
	return &service{
		cfg:      cfg,
		store:    store,
		trending: trending,
		exports:  exports,
		embedder: embedder,
		corpus:   NewCorpus(store, cfg.MaxFeatures),
		ranker:   NewRanker(embedder, cfg.LexicalWeight, cfg.SemanticWeight, logger),
		detector: NewDuplicateDetector(store, embedder, cfg.FuzzyThreshold, cfg.SemanticThreshold, logger),
		logger:   logger.With("component", "faq.service"),
	}
}

func (s *service) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	start := time.Now()
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return SearchResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	}
	topK := s.clampTopK(req.TopK)

	resp := SearchResponse{Results: []SearchResult{}, Method: MethodTFIDF}
	snap, err := s.corpus.EnsureLoaded(ctx)
	if err != nil {
		s.logger.Warn("faq corpus load failed, returning empty results", "error", err)
		resp.DurationMs = time.Since(start).Milliseconds()
		return resp, nil
	}

	hits, method := s.ranker.Rank(ctx, snap, query, topK)
	resp.Method = method
	for _, hit := range hits {
		resp.Results = append(resp.Results, SearchResult{
			Question:      hit.Record.Question,
			Answer:        hit.Record.Answer,
			Identifier:    hit.Record.Identifier,
			Category:      hit.Record.Category,
			CombinedScore: hit.Combined,
			LexicalScore:  hit.Lexical,
			SemanticScore: hit.Semantic,
			Method:        hit.Method,
		})
	}
	resp.TotalResults = len(resp.Results)

	if s.trending != nil {
		if err := s.trending.IncrementQuery(ctx, normalizeQuestion(query), query); err != nil {
			s.logger.Warn("faq trending increment failed", "error", err)
		}
	}
	resp.DurationMs = time.Since(start).Milliseconds()
	return resp, nil
}

func (s *service) AddRecord(ctx context.Context, req AddRequest) AddResponse {
	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	category := strings.TrimSpace(req.Category)
	identifier := strings.TrimSpace(req.Identifier)

	if utf8.RuneCountInString(question) < s.cfg.MinQuestionLen {
		return rejected(ReasonValidation, fmt.Sprintf("Question must be at least %d characters long", s.cfg.MinQuestionLen))
	}
	if utf8.RuneCountInString(answer) < s.cfg.MinAnswerLen {
		return rejected(ReasonValidation, fmt.Sprintf("Answer must be at least %d characters long", s.cfg.MinAnswerLen))
	}
	if category == "" {
		return rejected(ReasonValidation, "Category is required")
	}
	if identifier != "" {
		if _, err := ParseIdentifier(identifier); err != nil {
			return rejected(ReasonValidation, fmt.Sprintf("Question ID %q must look like Q<category>.<number>", identifier))
		}
		_, exists, err := s.store.FindOne(ctx, Filter{Identifier: identifier})
		if err != nil {
			return s.storeFailure(err)
		}
		if exists {
			return rejected(ReasonValidation, fmt.Sprintf("Question ID %s already exists", identifier))
		}
	}

	snap, err := s.corpus.EnsureLoaded(ctx)
	if err != nil {
		return s.storeFailure(err)
	}
	verdict, err := s.detector.Check(ctx, question, snap.Records)
	if err != nil {
		return s.storeFailure(err)
	}
	if verdict.Match != nil {
		resp := rejected(duplicateReason(verdict.Match.Kind), verdict.Match.Message())
		resp.Identifier = verdict.Match.Identifier
		resp.Duplicate = verdict.Match
		return resp
	}

	if identifier == "" {
		identifier = NextIdentifier(snap.Records, category)
	}

	embedding := verdict.Embedding
	if embedding == nil && s.embedder != nil {
		if embedding, err = s.embedder.Embed(ctx, question); err != nil {
			s.logger.Warn("faq embedding failed, storing without vector", "identifier", identifier, "error", err)
			embedding = nil
		}
	}
	if isZeroVector(embedding) {
		embedding = nil
	}
	addedBy := strings.TrimSpace(req.AddedBy)
	if addedBy == "" {
		addedBy = s.cfg.DefaultAddedBy
	}

	record := Record{
		Identifier: identifier,
		Question:   question,
		Answer:     answer,
		Category:   category,
		Embedding:  embedding,
		CreatedAt:  util.NowUTC(),
		AddedBy:    addedBy,
	}
	if _, err := s.store.InsertOne(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateIdentifier) {
			return rejected(ReasonValidation, fmt.Sprintf("Question ID %s already exists", identifier))
		}
		return s.storeFailure(err)
	}
	s.corpus.Invalidate()
	s.logger.Info("faq added", "identifier", identifier, "category", category, "embedded", record.HasEmbedding())

	return AddResponse{
		Success:    true,
		Message:    fmt.Sprintf("FAQ successfully added with ID: %s", identifier),
		Identifier: identifier,
		Record:     &record,
	}
}

func (s *service) InvalidateCache() {
	s.corpus.Invalidate()
	s.logger.Info("faq cache invalidated", "version", s.corpus.Version())
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	if s.trending == nil {
		return []TrendingQuery{}, nil
	}
	recs, err := s.trending.TopQueries(ctx, s.cfg.TopTrending)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load trending queries", err)
	}
	return recs, nil
}

func (s *service) Recent(ctx context.Context, n int) ([]Record, error) {
	if n < 1 {
		n = 1
	} else if n > maxRecent {
		n = maxRecent
	}
	records, err := s.store.FindAll(ctx, Projection{OmitEmbedding: true})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreUnavailable, "failed to load faqs", err)
	}
	sortByRecency(records)
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	snap, err := s.corpus.EnsureLoaded(ctx)
	if err != nil {
		return Stats{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "failed to load faqs", err)
	}
	stats := Stats{Total: len(snap.Records), Categories: make(map[string]int), Version: snap.Version}
	for _, rec := range snap.Records {
		stats.Categories[rec.Category]++
		if rec.HasEmbedding() {
			stats.WithEmbeddings++
		}
	}
	return stats, nil
}

func (s *service) clampTopK(topK int) int {
	switch {
	case topK == 0:
		return s.cfg.DefaultTopK
	case topK < 1:
		return 1
	case topK > s.cfg.MaxTopK:
		return s.cfg.MaxTopK
	default:
		return topK
	}
}

func (s *service) storeFailure(err error) AddResponse {
	s.logger.Error("faq store operation failed", "error", err)
	return rejected(ReasonStoreUnavailable, fmt.Sprintf("Error adding FAQ: %v", err))
}

const maxRecent = 100

func rejected(reason, message string) AddResponse {
	return AddResponse{Success: false, Reason: reason, Message: message}
}

func duplicateReason(kind DuplicateKind) string {
	switch kind {
	case DuplicateExact:
		return ReasonDuplicateExact
	case DuplicateFuzzy:
		return ReasonDuplicateFuzzy
	default:
		return ReasonDuplicateSemantic
	}
}

func sortByRecency(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
