package faq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DuplicateKind names the detector stage that rejected a candidate.
type DuplicateKind string

const (
	DuplicateExact    DuplicateKind = "exact"
	DuplicateFuzzy    DuplicateKind = "fuzzy"
	DuplicateSemantic DuplicateKind = "semantic"
)

// DuplicateMatch describes the existing record a candidate collided with.
type DuplicateMatch struct {
	Kind       DuplicateKind `json:"kind"`
	Identifier string        `json:"questionId"`
	Question   string        `json:"question"`
	Similarity float64       `json:"similarity"`
}

// Message renders the rejection text reported to callers.
func (m DuplicateMatch) Message() string {
	switch m.Kind {
	case DuplicateExact:
		return fmt.Sprintf("A FAQ with this exact question already exists (ID: %s)", m.Identifier)
	case DuplicateFuzzy:
		return fmt.Sprintf("A very similar question already exists (ID: %s, %.1f%% similar): '%s'", m.Identifier, m.Similarity*100, m.Question)
	default:
		return fmt.Sprintf("A semantically similar question already exists (ID: %s, %.1f%% similar): '%s'", m.Identifier, m.Similarity*100, m.Question)
	}
}

// Verdict is the outcome of a duplicate check. Embedding holds the candidate vector when the
// semantic stage computed one so callers can persist it without a second provider call.
type Verdict struct {
	Match     *DuplicateMatch
	Embedding []float32
}

// DuplicateDetector runs exact, fuzzy and semantic checks in that order, stopping at the first hit.
type DuplicateDetector struct {
	store             Store
	embedder          Embedder
	fuzzyThreshold    float64
	semanticThreshold float64
	logger            *slog.Logger
}

// NewDuplicateDetector constructs a detector.
func NewDuplicateDetector(store Store, embedder Embedder, fuzzyThreshold, semanticThreshold float64, logger *slog.Logger) *DuplicateDetector {
	return &DuplicateDetector{
		store:             store,
		embedder:          embedder,
		fuzzyThreshold:    fuzzyThreshold,
		semanticThreshold: semanticThreshold,
		logger:            logger.With("component", "faq.dedup"),
	}
}

// Check tests candidate against existing. Only store failures are returned as errors; an
// embedding failure skips the semantic stage.
func (d *DuplicateDetector) Check(ctx context.Context, candidate string, existing []Record) (Verdict, error) {
	question := strings.TrimSpace(candidate)

	rec, found, err := d.store.FindOne(ctx, Filter{Question: question})
	if err != nil {
		return Verdict{}, err
	}
	if found {
		return Verdict{Match: &DuplicateMatch{Kind: DuplicateExact, Identifier: rec.Identifier, Question: rec.Question, Similarity: 1}}, nil
	}

	if match := d.fuzzy(question, existing); match != nil {
		return Verdict{Match: match}, nil
	}

	if d.embedder == nil {
		return Verdict{}, nil
	}
	vector, err := d.embedder.Embed(ctx, question)
	if err != nil {
		d.logger.Warn("semantic duplicate check skipped", "error", err)
		return Verdict{}, nil
	}
	for _, rec := range existing {
		if !rec.HasEmbedding() || len(rec.Embedding) != len(vector) {
			continue
		}
		if sim := Cosine(vector, rec.Embedding); sim > d.semanticThreshold {
			return Verdict{
				Match:     &DuplicateMatch{Kind: DuplicateSemantic, Identifier: rec.Identifier, Question: rec.Question, Similarity: sim},
				Embedding: vector,
			}, nil
		}
	}
	return Verdict{Embedding: vector}, nil
}

func (d *DuplicateDetector) fuzzy(question string, existing []Record) *DuplicateMatch {
	lowered := strings.ToLower(question)
	for _, rec := range existing {
		if ratio := Ratio(lowered, strings.ToLower(rec.Question)); ratio > d.fuzzyThreshold {
			return &DuplicateMatch{Kind: DuplicateFuzzy, Identifier: rec.Identifier, Question: rec.Question, Similarity: ratio}
		}
	}
	return nil
}
