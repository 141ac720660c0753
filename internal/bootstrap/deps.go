package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
	"github.com/yanqian/faq-engine/internal/infra/embedding"
	"github.com/yanqian/faq-engine/internal/infra/exportstore"
	"github.com/yanqian/faq-engine/internal/infra/faqstore"
	"github.com/yanqian/faq-engine/pkg/metrics"
)

// FAQConfig maps runtime configuration onto the FAQ domain.
func FAQConfig(cfg *config.Config) faq.Config {
	return faq.Config{
		LexicalWeight:     cfg.FAQ.LexicalWeight,
		SemanticWeight:    cfg.FAQ.SemanticWeight,
		FuzzyThreshold:    cfg.FAQ.FuzzyThreshold,
		SemanticThreshold: cfg.FAQ.SemanticThreshold,
		DefaultTopK:       cfg.FAQ.DefaultTopK,
		MaxTopK:           cfg.FAQ.MaxTopK,
		MinQuestionLen:    cfg.FAQ.MinQuestionLen,
		MinAnswerLen:      cfg.FAQ.MinAnswerLen,
		MaxFeatures:       cfg.FAQ.MaxFeatures,
		DefaultAddedBy:    cfg.Admin.DefaultUser,
		TopTrending:       cfg.FAQ.TopTrending,
	}
}

// AdminConfig maps runtime configuration onto the admin gate.
func AdminConfig(cfg *config.Config) admin.Config {
	return admin.Config{
		Password:     cfg.Admin.Password,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Admin.JWTSecret,
		TokenTTL:     cfg.Admin.TokenTTL,
		DefaultUser:  cfg.Admin.DefaultUser,
	}
}

// EmbeddingConfig maps runtime configuration onto the provider factory.
func EmbeddingConfig(cfg *config.Config, usage *metrics.UsageCounter) embedding.Config {
	return embedding.Config{
		Provider:      cfg.Embedding.Provider,
		Model:         cfg.Embedding.Model,
		Dimension:     cfg.Embedding.Dimension,
		BaseURL:       cfg.Embedding.BaseURL,
		APIKey:        cfg.Embedding.APIKey,
		MaxTokens:     cfg.Embedding.MaxTokens,
		RatePerSecond: cfg.Embedding.RatePerSecond,
		Burst:         cfg.Embedding.Burst,
		CacheSize:     cfg.Embedding.CacheSize,
		Timeout:       cfg.Embedding.Timeout,
		Usage:         usage,
	}
}

// NewTrendingStore returns the Valkey-backed counters when enabled and reachable, otherwise
// an in-process store.
func NewTrendingStore(cfg *config.Config, logger *slog.Logger) faq.TrendingStore {
	window := cfg.FAQ.TrendingWindowDays
	if !cfg.FAQ.Redis.Enabled {
		return faqstore.NewMemoryStore(window)
	}
	opt, err := buildValkeyOptions(cfg.FAQ.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return faqstore.NewMemoryStore(window)
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return faqstore.NewMemoryStore(window)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return faqstore.NewMemoryStore(window)
	}
	logger.Info("faq valkey trending store enabled", "addr", cfg.FAQ.Redis.Addr, "window_days", window)
	return faqstore.NewValkeyStore(client, cfg.FAQ.Redis.Prefix, window)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// NewExportStorage returns the R2 bucket when configured, otherwise in-memory storage.
func NewExportStorage(cfg *config.Config, logger *slog.Logger) faq.ExportStorage {
	if !strings.EqualFold(cfg.Export.Backend, "r2") {
		return exportstore.NewMemoryStorage()
	}
	r2 := cfg.Export.R2
	store, err := exportstore.NewR2Storage(exportstore.R2Config{
		Endpoint:      r2.Endpoint,
		AccessKey:     r2.AccessKey,
		SecretKey:     r2.SecretKey,
		Bucket:        r2.Bucket,
		Region:        r2.Region,
		PublicBaseURL: r2.PublicBaseURL,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize r2 export storage, using memory", "error", err)
		return exportstore.NewMemoryStorage()
	}
	logger.Info("faq r2 export storage enabled", "bucket", r2.Bucket)
	return store
}
