package faq

import (
	"strings"
	"unicode"
)

// normalizeQuestion produces the canonical key used for trending counters.
func normalizeQuestion(q string) string {
	return strings.Join(wordRuns(strings.ToLower(strings.TrimSpace(q))), " ")
}

// wordRuns splits text into maximal runs of word characters; punctuation and spaces separate.
func wordRuns(text string) []string {
	var (
		out     []string
		builder strings.Builder
	)
	flush := func() {
		if builder.Len() > 0 {
			out = append(out, builder.String())
			builder.Reset()
		}
	}
	for _, r := range text {
		if isWordRune(r) {
			builder.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

// tokenize lower-cases text, keeps words of at least two runes that are not stop words and
// emits unigrams followed by bigrams over the surviving words.
func tokenize(text string) []string {
	words := wordRuns(strings.ToLower(text))
	kept := words[:0]
	for _, w := range words {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := englishStopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}
