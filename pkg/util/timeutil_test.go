package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{name: "rfc3339", in: "2025-01-02T03:04:05Z", want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "naive microseconds", in: "2025-01-02T03:04:05.123456", want: time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)},
		{name: "no fraction", in: "2025-01-02T03:04:05", want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "offset", in: "2025-01-02T05:04:05+02:00", want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "empty", in: "  ", want: time.Time{}},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		require.NoError(t, err, tc.name)
		require.True(t, tc.want.Equal(got), "%s: expected %v got %v", tc.name, tc.want, got)
	}

	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 500, time.FixedZone("x", 3600))
	parsed, err := ParseTimestamp(FormatTimestamp(ts))
	require.NoError(t, err)
	require.True(t, ts.Equal(parsed))
	require.Empty(t, FormatTimestamp(time.Time{}))
}
