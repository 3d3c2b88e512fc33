// Package config loads the immutable settings record every component reads
// from, built once at process start and never mutated after.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the single settings record the supervisor builds once at
// startup and threads through to every component by parameter, never by
// package-global.
type Config struct {
	Env      string `env:"ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
	IsDocker bool   `env:"IS_DOCKER" envDefault:"false"`
	AdminPort int   `env:"ADMIN_PORT" envDefault:"9090"`

	CRMBaseURL        string  `env:"CRM_BASE_URL" envDefault:"https://httpservice.ai2b.pro"`
	CRMHTTPTimeoutS   float64 `env:"CRM_HTTP_TIMEOUT_S" envDefault:"180"`
	CRMHTTPRetries    int     `env:"CRM_HTTP_RETRIES" envDefault:"3"`
	CRMRetryMinDelayS float64 `env:"CRM_RETRY_MIN_DELAY_S" envDefault:"1"`
	CRMRetryMaxDelayS float64 `env:"CRM_RETRY_MAX_DELAY_S" envDefault:"10"`

	PostgresHost         string `env:"POSTGRES_HOST"`
	PostgresPort         int    `env:"POSTGRES_PORT"`
	PostgresDB           string `env:"POSTGRES_DB"`
	PostgresUser         string `env:"POSTGRES_USER"`
	PostgresPassword     string `env:"POSTGRES_PASSWORD"`
	PGPoolMin            int    `env:"PG_POOL_MIN" envDefault:"1"`
	PGPoolMax            int    `env:"PG_POOL_MAX" envDefault:"10"`
	PGConnectTimeoutS    int    `env:"PG_CONNECT_TIMEOUT_S" envDefault:"10"`
	PGStatementTimeoutMs int    `env:"PG_STATEMENT_TIMEOUT_MS" envDefault:"5000"`
	PGQueryTimeoutS      int    `env:"PG_QUERY_TIMEOUT_S" envDefault:"10"`
	PGDDLTimeoutS        int    `env:"PG_DDL_TIMEOUT_S" envDefault:"30"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	QdrantURL               string  `env:"QDRANT_URL"`
	QdrantTimeout           float64 `env:"QDRANT_TIMEOUT" envDefault:"120"`
	QdrantAPIKey            string  `env:"QDRANT_API_KEY"`
	QdrantCollectionFAQ     string  `env:"QDRANT_COLLECTION_FAQ"`
	QdrantCollectionService string  `env:"QDRANT_COLLECTION_SERVICES"`
	QdrantCollectionProduct string  `env:"QDRANT_COLLECTION_PRODUCTS"`
	QdrantCollectionTemp    string  `env:"QDRANT_COLLECTION_TEMP"`

	OpenAIAPIKey      string  `env:"OPENAI_API_KEY"`
	OpenAITimeoutS    float64 `env:"OPENAI_TIMEOUT_S" envDefault:"60"`
	OpenAIProxyURL    string  `env:"OPENAI_PROXY_URL"`
	OpenAIModel       string  `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAITemperature float64 `env:"OPENAI_TEMPERATURE" envDefault:"0.2"`
}

// requiredKeys are the env vars with no sane default; Load fails fast when
// any is blank regardless of what env.Parse filled in.
var requiredKeys = []struct {
	name string
	get  func(*Config) string
}{
	{"POSTGRES_HOST", func(c *Config) string { return c.PostgresHost }},
	{"POSTGRES_DB", func(c *Config) string { return c.PostgresDB }},
	{"POSTGRES_USER", func(c *Config) string { return c.PostgresUser }},
	{"POSTGRES_PASSWORD", func(c *Config) string { return c.PostgresPassword }},
	{"QDRANT_URL", func(c *Config) string { return c.QdrantURL }},
	{"QDRANT_COLLECTION_FAQ", func(c *Config) string { return c.QdrantCollectionFAQ }},
	{"QDRANT_COLLECTION_SERVICES", func(c *Config) string { return c.QdrantCollectionService }},
	{"QDRANT_COLLECTION_PRODUCTS", func(c *Config) string { return c.QdrantCollectionProduct }},
	{"QDRANT_COLLECTION_TEMP", func(c *Config) string { return c.QdrantCollectionTemp }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.OpenAIAPIKey }},
}

// Load reads configuration from the environment, optionally preceded by a
// .env file (skipped when IS_DOCKER=1, since a container already has its
// environment populated), then fails fast on any missing required key or
// malformed numeric field.
func Load() (*Config, error) {
	if strings.TrimSpace(os.Getenv("IS_DOCKER")) != "1" {
		// A missing .env file in production is normal, not fatal.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config from env: %w", err)
	}

	if cfg.PostgresPort == 0 {
		return nil, fmt.Errorf("missing required environment variable %s", "POSTGRES_PORT")
	}

	for _, k := range requiredKeys {
		if strings.TrimSpace(k.get(cfg)) == "" {
			return nil, fmt.Errorf("missing required environment variable %s", k.name)
		}
	}

	cfg.CRMBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CRMBaseURL), "/")
	return cfg, nil
}
