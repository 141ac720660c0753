package faq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexicalIndexQuery(t *testing.T) {
	idx := BuildLexicalIndex(7, []string{
		"What is the refund policy?",
		"How do I reset my login password?",
		"When does the program start?",
	}, 0)
	require.Equal(t, uint64(7), idx.Version())
	require.Equal(t, 3, idx.Len())

	scores := idx.Query("refund policy")
	require.Len(t, scores, 3)
	require.InDelta(t, 1, scores[0], 1e-9)
	require.Zero(t, scores[1])
	require.Zero(t, scores[2])

	scores = idx.Query("password")
	require.Greater(t, scores[1], 0.0)
	require.Less(t, scores[1], 1.0)
	require.Zero(t, scores[0])
}

func TestLexicalIndexStopWordsOnlyQuery(t *testing.T) {
	idx := BuildLexicalIndex(1, []string{"What is the refund policy?"}, 0)
	require.Equal(t, []float64{0}, idx.Query("what is the"))
}

func TestLexicalIndexMaxFeatures(t *testing.T) {
	// "alpha" occurs most often; the cap keeps it and drops the rarer terms.
	idx := BuildLexicalIndex(1, []string{"alpha alpha beta", "alpha gamma"}, 1)
	require.Len(t, idx.vocabulary, 1)
	require.Contains(t, idx.vocabulary, "alpha")
	require.Zero(t, idx.Query("beta")[0])
}

func TestLexicalIndexEmptyCorpus(t *testing.T) {
	idx := BuildLexicalIndex(0, nil, 10)
	require.Empty(t, idx.Query("anything"))
}
