package faq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeQuestion(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{name: "trims whitespace", in: "  Hello World  ", out: "hello world"},
		{name: "removes punctuation", in: "What's, the distance?", out: "what s the distance"},
		{name: "collapses separators", in: "refund -- policy!!", out: "refund policy"},
	}

	for _, tc := range cases {
		if got := normalizeQuestion(tc.in); got != tc.out {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.out, got)
		}
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  []string
	}{
		{
			name: "drops stop words and short tokens",
			in:   "What is the refund policy?",
			out:  []string{"refund", "policy", "refund policy"},
		},
		{
			name: "bigrams span removed stop words",
			in:   "Reset my ViBe password",
			out:  []string{"reset", "vibe", "password", "reset vibe", "vibe password"},
		},
		{
			name: "only stop words",
			in:   "what is it",
			out:  []string{},
		},
		{
			name: "keeps digits and underscores",
			in:   "Module_2 deadline 2025",
			out:  []string{"module_2", "deadline", "2025", "module_2 deadline", "deadline 2025"},
		},
	}
	for _, tc := range cases {
		require.Equal(t, tc.out, tokenize(tc.in), tc.name)
	}
}
