package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	FAQ       FAQConfig       `yaml:"faq"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Admin     AdminConfig     `yaml:"admin"`
	Export    ExportConfig    `yaml:"export"`
	MCP       MCPConfig       `yaml:"mcp"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// FAQConfig controls retrieval, duplicate detection and persistence.
type FAQConfig struct {
	LexicalWeight      float64        `yaml:"lexicalWeight"`
	SemanticWeight     float64        `yaml:"semanticWeight"`
	FuzzyThreshold     float64        `yaml:"fuzzyThreshold"`
	SemanticThreshold  float64        `yaml:"semanticThreshold"`
	DefaultTopK        int            `yaml:"defaultTopK"`
	MaxTopK            int            `yaml:"maxTopK"`
	MinQuestionLen     int            `yaml:"minQuestionLen"`
	MinAnswerLen       int            `yaml:"minAnswerLen"`
	MaxFeatures        int            `yaml:"maxFeatures"`
	TopTrending        int            `yaml:"topTrending"`
	TrendingWindowDays int            `yaml:"trendingWindowDays"`
	Backend            string         `yaml:"backend"`
	Mongo              MongoConfig    `yaml:"mongo"`
	Postgres           PostgresConfig `yaml:"postgres"`
	Redis              RedisConfig    `yaml:"redis"`
}

// MongoConfig locates the questions collection.
type MongoConfig struct {
	URI        string        `yaml:"uri"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// RedisConfig contains connection information for the trending counters.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	Dimension     int           `yaml:"dimension"`
	BaseURL       string        `yaml:"baseUrl"`
	APIKey        string        `yaml:"apiKey"`
	MaxTokens     int           `yaml:"maxTokens"`
	RatePerSecond float64       `yaml:"ratePerSecond"`
	Burst         int           `yaml:"burst"`
	CacheSize     int           `yaml:"cacheSize"`
	Timeout       time.Duration `yaml:"timeout"`
}

// AdminConfig guards the curation surfaces.
type AdminConfig struct {
	Password     string        `yaml:"password"`
	PasswordHash string        `yaml:"passwordHash"`
	JWTSecret    string        `yaml:"jwtSecret"`
	TokenTTL     time.Duration `yaml:"tokenTtl"`
	DefaultUser  string        `yaml:"defaultUser"`
}

// ExportConfig selects where CSV exports are uploaded.
type ExportConfig struct {
	Backend string   `yaml:"backend"`
	R2      R2Config `yaml:"r2"`
}

// R2Config holds S3-compatible bucket settings.
type R2Config struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"accessKey"`
	SecretKey     string `yaml:"secretKey"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// MCPConfig controls the Model Context Protocol endpoint.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := envReader(getenv)

	env.str(&cfg.HTTP.Address, "HTTP_ADDRESS")
	if host, port := getenv("SERVER_HOST"), getenv("SERVER_PORT"); host != "" || port != "" {
		curHost, curPort, err := net.SplitHostPort(cfg.HTTP.Address)
		if err != nil {
			curHost, curPort = "", "8080"
		}
		if host != "" {
			curHost = host
		}
		if port != "" {
			curPort = port
		}
		cfg.HTTP.Address = net.JoinHostPort(curHost, curPort)
	}
	env.boolean(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	env.integer(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	env.integer(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	env.boolean(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	env.integer(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	env.duration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")
	env.list(&cfg.HTTP.CORS.AllowedOrigins, "HTTP_CORS_ORIGINS")

	env.float(&cfg.FAQ.LexicalWeight, "TFIDF_WEIGHT")
	env.float(&cfg.FAQ.SemanticWeight, "EMBEDDING_WEIGHT")
	env.float(&cfg.FAQ.FuzzyThreshold, "FAQ_FUZZY_THRESHOLD")
	env.float(&cfg.FAQ.SemanticThreshold, "FAQ_SEMANTIC_THRESHOLD")
	env.integer(&cfg.FAQ.DefaultTopK, "FAQ_DEFAULT_TOP_K")
	env.integer(&cfg.FAQ.MaxTopK, "FAQ_MAX_TOP_K")
	env.str(&cfg.FAQ.Backend, "FAQ_STORE_BACKEND")
	env.str(&cfg.FAQ.Mongo.URI, "MONGODB_URI")
	env.str(&cfg.FAQ.Mongo.Database, "DB_NAME")
	env.str(&cfg.FAQ.Mongo.Collection, "COLLECTION_NAME")
	env.str(&cfg.FAQ.Postgres.DSN, "FAQ_POSTGRES_DSN")
	env.int32(&cfg.FAQ.Postgres.MaxConns, "FAQ_POSTGRES_MAX_CONNS")
	env.int32(&cfg.FAQ.Postgres.MinConns, "FAQ_POSTGRES_MIN_CONNS")
	env.boolean(&cfg.FAQ.Redis.Enabled, "FAQ_REDIS_ENABLED")
	env.str(&cfg.FAQ.Redis.Addr, "FAQ_REDIS_ADDR")

	env.str(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	env.str(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	env.integer(&cfg.Embedding.Dimension, "EMBEDDING_DIMENSION")
	env.str(&cfg.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	env.float(&cfg.Embedding.RatePerSecond, "EMBEDDING_RATE_PER_SECOND")
	env.integer(&cfg.Embedding.CacheSize, "EMBEDDING_CACHE_SIZE")
	switch strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider)) {
	case "openai":
		env.str(&cfg.Embedding.APIKey, "OPENAI_API_KEY")
	case "voyage", "anthropic":
		env.str(&cfg.Embedding.APIKey, "ANTHROPIC_API_KEY")
		env.str(&cfg.Embedding.APIKey, "VOYAGE_API_KEY")
	}
	env.str(&cfg.Embedding.APIKey, "EMBEDDING_API_KEY")

	env.str(&cfg.Admin.Password, "ADMIN_PASSWORD")
	env.str(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	env.str(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")
	env.duration(&cfg.Admin.TokenTTL, "ADMIN_TOKEN_TTL")
	env.str(&cfg.Admin.DefaultUser, "DEFAULT_ADMIN_USER")

	env.str(&cfg.Export.Backend, "EXPORT_BACKEND")
	env.str(&cfg.Export.R2.Endpoint, "R2_ENDPOINT")
	env.str(&cfg.Export.R2.AccessKey, "R2_ACCESS_KEY_ID")
	env.str(&cfg.Export.R2.SecretKey, "R2_SECRET_ACCESS_KEY")
	env.str(&cfg.Export.R2.Bucket, "R2_BUCKET")
	env.str(&cfg.Export.R2.PublicBaseURL, "R2_PUBLIC_BASE_URL")

	env.boolean(&cfg.MCP.Enabled, "MCP_ENABLED")
	env.str(&cfg.MCP.Path, "MCP_PATH")
}

type envReader func(string) string

func (e envReader) str(dst *string, key string) {
	if v := e(key); v != "" {
		*dst = v
	}
}

func (e envReader) boolean(dst *bool, key string) {
	if v := e(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func (e envReader) integer(dst *int, key string) {
	if v := e(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func (e envReader) int32(dst *int32, key string) {
	if v := e(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(parsed)
		}
	}
}

func (e envReader) float(dst *float64, key string) {
	if v := e(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func (e envReader) duration(dst *time.Duration, key string) {
	if v := e(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func (e envReader) list(dst *[]string, key string) {
	v := e(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      "0.0.0.0:9010",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/admin/faqs",
					"/api/v1/admin/login",
					"/mcp",
				},
			},
		},
		FAQ: FAQConfig{
			LexicalWeight:      0.3,
			SemanticWeight:     0.7,
			FuzzyThreshold:     0.85,
			SemanticThreshold:  0.90,
			DefaultTopK:        3,
			MaxTopK:            5,
			MinQuestionLen:     10,
			MinAnswerLen:       20,
			MaxFeatures:        1000,
			TopTrending:        10,
			TrendingWindowDays: 7,
			Backend:            "mongo",
			Mongo: MongoConfig{
				Database:   "faq_bootcamp",
				Collection: "questions",
				Timeout:    10 * time.Second,
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Redis: RedisConfig{
				Prefix: "faq",
			},
		},
		Embedding: EmbeddingConfig{
			Provider:      "local",
			Model:         "BAAI/bge-large-en-v1.5",
			Dimension:     1024,
			MaxTokens:     8000,
			RatePerSecond: 5,
			Burst:         5,
			CacheSize:     2048,
			Timeout:       30 * time.Second,
		},
		Admin: AdminConfig{
			TokenTTL:    12 * time.Hour,
			DefaultUser: "admin",
		},
		Export: ExportConfig{
			Backend: "memory",
			R2: R2Config{
				Region: "auto",
			},
		},
		MCP: MCPConfig{
			Enabled: true,
			Path:    "/mcp",
			Name:    "faq-engine",
			Version: "1.0.0",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.FAQ.LexicalWeight < 0 || c.FAQ.SemanticWeight < 0 {
		return errors.New("faq weights cannot be negative")
	}
	if c.FAQ.LexicalWeight+c.FAQ.SemanticWeight == 0 {
		return errors.New("faq.lexicalWeight and faq.semanticWeight cannot both be zero")
	}
	if c.FAQ.FuzzyThreshold <= 0 || c.FAQ.FuzzyThreshold > 1 {
		return errors.New("faq.fuzzyThreshold must be in (0, 1]")
	}
	if c.FAQ.SemanticThreshold <= 0 || c.FAQ.SemanticThreshold > 1 {
		return errors.New("faq.semanticThreshold must be in (0, 1]")
	}
	if c.FAQ.MaxTopK <= 0 || c.FAQ.DefaultTopK <= 0 || c.FAQ.DefaultTopK > c.FAQ.MaxTopK {
		return errors.New("faq.defaultTopK must be positive and not exceed faq.maxTopK")
	}
	switch strings.ToLower(c.FAQ.Backend) {
	case "mongo":
		if strings.TrimSpace(c.FAQ.Mongo.URI) == "" {
			return errors.New("faq.mongo.uri (MONGODB_URI) is required for the mongo backend")
		}
	case "postgres":
		if strings.TrimSpace(c.FAQ.Postgres.DSN) == "" {
			return errors.New("faq.postgres.dsn is required for the postgres backend")
		}
	case "memory":
	default:
		return fmt.Errorf("faq.backend %q must be one of mongo, postgres, memory", c.FAQ.Backend)
	}
	if c.FAQ.Redis.Enabled && strings.TrimSpace(c.FAQ.Redis.Addr) == "" {
		return errors.New("faq.redis.addr cannot be empty when redis is enabled")
	}
	if c.Embedding.Dimension <= 0 {
		return errors.New("embedding.dimension must be positive")
	}
	if c.Embedding.RatePerSecond < 0 {
		return errors.New("embedding.ratePerSecond cannot be negative")
	}
	if c.Admin.TokenTTL <= 0 {
		return errors.New("admin.tokenTtl must be positive")
	}
	if strings.EqualFold(c.Export.Backend, "r2") && (c.Export.R2.Endpoint == "" || c.Export.R2.Bucket == "") {
		return errors.New("export.r2.endpoint and export.r2.bucket are required for the r2 backend")
	}
	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		return errors.New("mcp.path must start with /")
	}
	return nil
}
