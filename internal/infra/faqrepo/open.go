package faqrepo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
)

// Backend names accepted by Open.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Repository is a faq.Store that owns a connection to release on shutdown.
type Repository interface {
	faq.Store
	Close(ctx context.Context) error
}

// Open connects the configured backend and prepares its indexes.
func Open(ctx context.Context, cfg config.FAQConfig, logger *slog.Logger) (Repository, error) {
	logger = logger.With("component", "faqrepo")
	switch backend := strings.ToLower(strings.TrimSpace(cfg.Backend)); backend {
	case BackendMongo, "mongodb":
		client, err := ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		repo := NewMongoRepository(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("mongo index creation failed", "error", err)
		}
		logger.Info("faq mongo repository enabled", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		return repo, nil
	case BackendPostgres:
		pool, err := openPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		repo := NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure faq schema: %w", err)
		}
		logger.Info("faq postgres repository enabled")
		return repo, nil
	case BackendMemory:
		logger.Info("faq memory repository enabled")
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown faq backend %q", cfg.Backend)
	}
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
