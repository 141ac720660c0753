package faq

import "github.com/pmezard/go-difflib/difflib"

// Ratio returns 2*M/T where M is the number of characters in matching blocks and T the combined
// length, with popular characters ignored as match seeds once b reaches 200 characters.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
