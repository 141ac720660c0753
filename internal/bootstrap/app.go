package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	faqSvc faq.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, faqSvc faq.Service) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, faqSvc: faqSvc}
}

// Run warms the corpus, starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if stats, err := a.faqSvc.Stats(warmCtx); err != nil {
		a.logger.Warn("faq corpus warm-up failed, will retry on first request", "error", err)
	} else {
		a.logger.Info("faq corpus loaded", "total", stats.Total, "with_embeddings", stats.WithEmbeddings, "categories", len(stats.Categories))
	}
	cancel()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "mcp", a.cfg.MCP.Enabled)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
