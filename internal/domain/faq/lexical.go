package faq

import (
	"math"
	"sort"
)

const defaultMaxFeatures = 1000

type sparseVector map[int]float64

// LexicalIndex is a TF-IDF index over record questions using unigrams and bigrams.
// It is immutable after construction.
type LexicalIndex struct {
	version    uint64
	vocabulary map[string]int
	idf        []float64
	rows       []sparseVector
}

// BuildLexicalIndex fits the vocabulary and IDF weights over questions. The vocabulary keeps
// the maxFeatures terms with the highest corpus frequency, ties broken alphabetically.
func BuildLexicalIndex(version uint64, questions []string, maxFeatures int) *LexicalIndex {
	if maxFeatures <= 0 {
		maxFeatures = defaultMaxFeatures
	}
	docs := make([]map[string]int, len(questions))
	totals := make(map[string]int)
	docFreq := make(map[string]int)
	for i, q := range questions {
		counts := make(map[string]int)
		for _, term := range tokenize(q) {
			counts[term]++
		}
		for term, n := range counts {
			totals[term] += n
			docFreq[term]++
		}
		docs[i] = counts
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] == totals[terms[j]] {
			return terms[i] < terms[j]
		}
		return totals[terms[i]] > totals[terms[j]]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	idx := &LexicalIndex{
		version:    version,
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		rows:       make([]sparseVector, len(docs)),
	}
	n := float64(len(questions))
	for col, term := range terms {
		idx.vocabulary[term] = col
		idx.idf[col] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	for i, counts := range docs {
		idx.rows[i] = idx.weigh(counts)
	}
	return idx
}

// Version reports the corpus version the index was built from.
func (idx *LexicalIndex) Version() uint64 {
	return idx.version
}

// Len returns the number of indexed documents.
func (idx *LexicalIndex) Len() int {
	return len(idx.rows)
}

// Query returns the cosine similarity of text against every indexed document, in index order.
func (idx *LexicalIndex) Query(text string) []float64 {
	scores := make([]float64, len(idx.rows))
	counts := make(map[string]int)
	for _, term := range tokenize(text) {
		counts[term]++
	}
	query := idx.weigh(counts)
	if len(query) == 0 {
		return scores
	}
	for i, row := range idx.rows {
		var sum float64
		for col, w := range query {
			sum += w * row[col]
		}
		scores[i] = sum
	}
	return scores
}

// weigh converts raw term counts into an L2-normalised tf-idf vector over the vocabulary.
func (idx *LexicalIndex) weigh(counts map[string]int) sparseVector {
	vec := make(sparseVector, len(counts))
	var norm float64
	for term, n := range counts {
		col, ok := idx.vocabulary[term]
		if !ok {
			continue
		}
		w := float64(n) * idx.idf[col]
		vec[col] = w
		norm += w * w
	}
	if norm == 0 {
		return sparseVector{}
	}
	norm = math.Sqrt(norm)
	for col := range vec {
		vec[col] /= norm
	}
	return vec
}
