package faq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{a: "abcd", b: "bcde", want: 0.75},
		{a: "", b: "", want: 1},
		{a: "abc", b: "", want: 0},
		{a: "same", b: "same", want: 1},
		{a: "what's the refund policy?", b: "what is the refund policy?", want: 48.0 / 51.0},
	}
	for _, tc := range cases {
		require.InDelta(t, tc.want, Ratio(tc.a, tc.b), 1e-9, "%q vs %q", tc.a, tc.b)
	}
}

func TestRatioAutojunkLongInputs(t *testing.T) {
	// popular runes never seed a match but still extend one found at the span edge
	b := strings.Repeat("a", 300)
	require.InDelta(t, 2.0/301.0, Ratio("a", b), 1e-9)
	require.InDelta(t, 1, Ratio(b, b), 1e-9)
}
