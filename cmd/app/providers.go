package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
	"github.com/yanqian/faq-engine/internal/infra/embedding"
	"github.com/yanqian/faq-engine/internal/infra/faqrepo"
	"github.com/yanqian/faq-engine/internal/interface/mcp"
	"github.com/yanqian/faq-engine/pkg/metrics"
)

func provideUsageCounter() *metrics.UsageCounter {
	return &metrics.UsageCounter{}
}

func provideEmbedder(cfg embedding.Config, logger *slog.Logger) (faq.Embedder, error) {
	return embedding.New(cfg, logger)
}

func provideFAQRepository(cfg *config.Config, logger *slog.Logger) (faq.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FAQ.Mongo.Timeout+10*time.Second)
	defer cancel()
	repo, err := faqrepo.Open(ctx, cfg.FAQ, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := repo.Close(context.Background()); err != nil {
			logger.Warn("faq repository close failed", "error", err)
		}
	}
	return repo, cleanup, nil
}

func provideMCPServer(cfg *config.Config, faqSvc faq.Service, adminSvc admin.Service, logger *slog.Logger) *mcp.Server {
	return mcp.NewServer(cfg.MCP, faqSvc, adminSvc, logger)
}

// provideMCPHandler returns nil when the endpoint is disabled; the router skips it then.
func provideMCPHandler(cfg *config.Config, server *mcp.Server) http.Handler {
	if !cfg.MCP.Enabled {
		return nil
	}
	return server.Handler(cfg.MCP.Path)
}
