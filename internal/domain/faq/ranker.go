package faq

import (
	"context"
	"log/slog"
	"sort"
)

// Ranker blends lexical and embedding similarity into a single ordering.
type Ranker struct {
	embedder       Embedder
	lexicalWeight  float64
	semanticWeight float64
	logger         *slog.Logger
}

// NewRanker constructs a Ranker with the given blend weights.
func NewRanker(embedder Embedder, lexicalWeight, semanticWeight float64, logger *slog.Logger) *Ranker {
	return &Ranker{
		embedder:       embedder,
		lexicalWeight:  lexicalWeight,
		semanticWeight: semanticWeight,
		logger:         logger.With("component", "faq.ranker"),
	}
}

// Rank scores every record in snap against query and returns at most topK positive hits.
func (r *Ranker) Rank(ctx context.Context, snap *Snapshot, query string, topK int) ([]ScoredRecord, Method) {
	if len(snap.Records) == 0 {
		return nil, MethodTFIDF
	}
	lexical := snap.Lexical().Query(query)
	semantic, ok := r.semanticScores(ctx, snap, query)

	method := MethodTFIDF
	if ok {
		method = MethodHybrid
	}
	scored := make([]ScoredRecord, len(snap.Records))
	for i, rec := range snap.Records {
		hit := ScoredRecord{Record: rec, Lexical: lexical[i], Method: method}
		if ok {
			hit.Semantic = semantic[i]
			hit.Combined = r.lexicalWeight*hit.Lexical + r.semanticWeight*hit.Semantic
		} else {
			hit.Combined = hit.Lexical
		}
		scored[i] = hit
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Combined > scored[j].Combined
	})

	out := make([]ScoredRecord, 0, topK)
	for _, hit := range scored {
		if len(out) == topK {
			break
		}
		if hit.Combined <= 0 {
			break
		}
		out = append(out, hit)
	}
	return out, method
}

// semanticScores embeds the query once and scores every record; records without a vector score 0.
// ok is false when no record has an embedding or the query could not be embedded.
func (r *Ranker) semanticScores(ctx context.Context, snap *Snapshot, query string) ([]float64, bool) {
	if r.embedder == nil || !snap.HasEmbeddings() {
		return nil, false
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, falling back to tfidf", "error", err)
		return nil, false
	}
	if len(vector) == 0 {
		return nil, false
	}
	scores := make([]float64, len(snap.Records))
	for i, rec := range snap.Records {
		if rec.HasEmbedding() {
			scores[i] = Cosine(vector, rec.Embedding)
		}
	}
	return scores, true
}
