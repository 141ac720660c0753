package embedding

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/llm/chatgpt"
	"github.com/yanqian/faq-engine/pkg/metrics"
)

// Provider names accepted by New.
const (
	ProviderOpenAI        = "openai"
	ProviderVoyage        = "voyage"
	ProviderAnthropic     = "anthropic"
	ProviderLocal         = "local"
	ProviderDeterministic = "deterministic"
	ProviderNone          = "none"
)

// ErrEmptyText is returned for blank inputs.
var ErrEmptyText = errors.New("text cannot be empty")

// Config selects and tunes the embedding provider.
type Config struct {
	Provider      string
	Model         string
	Dimension     int
	BaseURL       string
	APIKey        string
	MaxTokens     int
	RatePerSecond float64
	Burst         int
	CacheSize     int
	Timeout       time.Duration

	// Usage, when set, accumulates provider-reported token counts.
	Usage *metrics.UsageCounter
}

// New builds the configured provider, wrapped with rate limiting for remote APIs and an LRU
// cache. Unknown provider names fall back to zero vectors with a warning.
func New(cfg Config, logger *slog.Logger) (faq.Embedder, error) {
	logger = logger.With("component", "embedding")
	var (
		base   faq.Embedder
		remote bool
		err    error
	)
	switch name := strings.ToLower(strings.TrimSpace(cfg.Provider)); name {
	case ProviderOpenAI:
		var client *chatgpt.Client
		if client, err = chatgpt.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout); err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		base, remote = NewOpenAIEmbedder(client, cfg.Model, cfg.Dimension, cfg.MaxTokens, cfg.Usage, logger), true
	case ProviderVoyage, ProviderAnthropic:
		if base, err = NewVoyageEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimension, cfg.Timeout); err != nil {
			return nil, fmt.Errorf("voyage embedder: %w", err)
		}
		remote = true
	case ProviderLocal:
		base = NewLocalEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimension, cfg.Timeout)
	case ProviderDeterministic:
		base = NewDeterministicEmbedder(cfg.Dimension)
	case ProviderNone, "":
		base = NewZeroEmbedder(cfg.Dimension)
	default:
		logger.Warn("unknown embedding provider, using zero vectors", "provider", cfg.Provider)
		base = NewZeroEmbedder(cfg.Dimension)
	}

	if remote && cfg.RatePerSecond > 0 {
		base = NewRateLimited(base, cfg.RatePerSecond, cfg.Burst)
	}
	if cfg.CacheSize > 0 {
		if base, err = NewCached(base, cfg.CacheSize); err != nil {
			return nil, err
		}
	}
	logger.Info("embedding provider ready", "provider", base.Name(), "dimension", base.Dimension())
	return base, nil
}
