package metrics

import "sync/atomic"

// TokenUsage captures provider token counts for embedding requests.
type TokenUsage struct {
	Requests     int64 `json:"requests"`
	PromptTokens int64 `json:"promptTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.Requests == 0 && u.PromptTokens == 0 && u.TotalTokens == 0
}

// UsageCounter accumulates TokenUsage across concurrent requests. The zero value is ready to use.
type UsageCounter struct {
	requests atomic.Int64
	prompt   atomic.Int64
	total    atomic.Int64
}

// Add records one request.
func (c *UsageCounter) Add(promptTokens, totalTokens int) {
	if c == nil {
		return
	}
	c.requests.Add(1)
	c.prompt.Add(int64(promptTokens))
	c.total.Add(int64(totalTokens))
}

// Snapshot returns the totals so far.
func (c *UsageCounter) Snapshot() TokenUsage {
	if c == nil {
		return TokenUsage{}
	}
	return TokenUsage{Requests: c.requests.Load(), PromptTokens: c.prompt.Load(), TotalTokens: c.total.Load()}
}
