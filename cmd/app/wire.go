//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/faq-engine/internal/bootstrap"
	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
	httpiface "github.com/yanqian/faq-engine/internal/interface/http"
	"github.com/yanqian/faq-engine/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		bootstrap.FAQConfig,
		bootstrap.AdminConfig,
		bootstrap.EmbeddingConfig,
		bootstrap.NewTrendingStore,
		bootstrap.NewExportStorage,
		provideUsageCounter,
		provideEmbedder,
		provideFAQRepository,
		faq.NewService,
		admin.NewService,
		provideMCPServer,
		provideMCPHandler,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
