package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsageCounter(t *testing.T) {
	var c UsageCounter
	require.True(t, c.Snapshot().IsZero())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(3, 4)
		}()
	}
	wg.Wait()
	require.Equal(t, TokenUsage{Requests: 10, PromptTokens: 30, TotalTokens: 40}, c.Snapshot())

	var nilCounter *UsageCounter
	nilCounter.Add(1, 1)
	require.True(t, nilCounter.Snapshot().IsZero())
}
