package cli

import (
	"context"
	"fmt"

	"github.com/yanqian/faq-engine/internal/bootstrap"
	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/embedding"
	"github.com/yanqian/faq-engine/internal/infra/faqrepo"
	"github.com/yanqian/faq-engine/pkg/metrics"
)

// runtime bundles the collaborators a command needs for one invocation.
type runtime struct {
	repo     faqrepo.Repository
	embedder faq.Embedder
	usage    *metrics.UsageCounter
	service  faq.Service
	ingestor *faq.Ingestor
}

// openRuntime is swapped in tests to run commands against an in-memory store.
var openRuntime = func(ctx context.Context) (*runtime, error) {
	repo, err := faqrepo.Open(ctx, cfg.FAQ, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to open faq store: %w", err)
	}
	usage := &metrics.UsageCounter{}
	embedder, err := embedding.New(bootstrap.EmbeddingConfig(cfg, usage), appLogger)
	if err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return newRuntime(repo, embedder, usage, bootstrap.NewExportStorage(cfg, appLogger)), nil
}

// newRuntime builds the service without trending counters so CLI searches do not skew them.
func newRuntime(repo faqrepo.Repository, embedder faq.Embedder, usage *metrics.UsageCounter, exports faq.ExportStorage) *runtime {
	svc := faq.NewService(bootstrap.FAQConfig(cfg), repo, nil, exports, embedder, appLogger)
	return &runtime{
		repo:     repo,
		embedder: embedder,
		usage:    usage,
		service:  svc,
		ingestor: faq.NewIngestor(repo, embedder, svc, appLogger),
	}
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.repo.Close(ctx); err != nil {
		appLogger.Warn("faq store close failed", "error", err)
	}
}
