package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"POSTGRES_HOST":              "localhost",
		"POSTGRES_PORT":              "5432",
		"POSTGRES_DB":                "toolfleet",
		"POSTGRES_USER":              "toolfleet",
		"POSTGRES_PASSWORD":          "secret",
		"QDRANT_URL":                 "http://localhost:6333",
		"QDRANT_COLLECTION_FAQ":      "faq",
		"QDRANT_COLLECTION_SERVICES": "services",
		"QDRANT_COLLECTION_PRODUCTS": "products",
		"QDRANT_COLLECTION_TEMP":     "temp",
		"OPENAI_API_KEY":             "sk-test",
		"IS_DOCKER":                  "1",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name  string
		check func(*Config) bool
	}{
		{"default env is dev", func(c *Config) bool { return c.Env == "dev" }},
		{"default log level is INFO", func(c *Config) bool { return c.LogLevel == "INFO" }},
		{"default CRM base URL", func(c *Config) bool { return c.CRMBaseURL == "https://httpservice.ai2b.pro" }},
		{"default CRM retries", func(c *Config) bool { return c.CRMHTTPRetries == 3 }},
		{"default pg pool max", func(c *Config) bool { return c.PGPoolMax == 10 }},
		{"resolved postgres port", func(c *Config) bool { return c.PostgresPort == 5432 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(cfg) {
				t.Errorf("unexpected config value for %s", tt.name)
			}
		})
	}
}

func TestLoadMissingRequiredKeyFailsFast(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_HOST", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing POSTGRES_HOST")
	}
}

func TestLoadMissingPostgresPortFailsFast(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_PORT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing POSTGRES_PORT")
	}
}

func TestLoadMalformedIntFailsFast(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed POSTGRES_PORT")
	}
}

func TestLoadTrimsTrailingSlashFromCRMBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CRM_BASE_URL", "https://example.test/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CRMBaseURL != "https://example.test" {
		t.Fatalf("expected trimmed base URL, got %q", cfg.CRMBaseURL)
	}
}
