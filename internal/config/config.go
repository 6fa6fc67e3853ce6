// Package config loads the pipeline's configuration, entirely from
// environment variables per spec.md §6, validated with
// go-playground/validator/v10.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DashboardSourceConfig carries the upstream BI service's auth and endpoint.
type DashboardSourceConfig struct {
	BaseURL    string `validate:"required,url"`
	Cookie     string `validate:"required"`
	CSRFToken  string `validate:"required"`
}

// LLMConfig carries the LLM Gateway's provider selection and limits,
// named to match the teacher's config.LLMConfig field set
// (Provider/Endpoint/Model/Temperature/MaxTokens/Timeout) observed in
// pkg/ai/llm/client_test.go.
type LLMConfig struct {
	Provider       string        `validate:"required,oneof=provider-a provider-b"`
	Endpoint       string        `validate:"omitempty,url"`
	APIKey         string
	Model          string        `validate:"required"`
	Temperature    float64       `validate:"gte=0,lte=2"`
	MaxTokens      int           `validate:"gt=0"`
	Timeout        time.Duration
	MaxContextSize int
	CacheEnabled   bool
	CacheRedisAddr string
}

// Config is the complete process configuration.
type Config struct {
	Dashboard DashboardSourceConfig
	LLM       LLMConfig

	MaxWorkersDashboards int `validate:"gt=0"`
	MaxWorkersCharts     int `validate:"gt=0"`
	ContinueOnError      bool

	EnableLLMExtraction    bool
	EnableTableValidation  bool
	EnableSchemaEnrichment bool

	BaseDir string `validate:"required"`

	HTTPTimeout time.Duration
	LLMTimeout  time.Duration

	CatalogTableName string
	CatalogDSN       string

	SlackWebhookURL string

	ListenAddr string
}

// Load reads every documented env var, applying the defaults from
// spec.md §6, then validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Dashboard: DashboardSourceConfig{
			BaseURL:   os.Getenv("BI_BASE_URL"),
			Cookie:    os.Getenv("BI_COOKIE"),
			CSRFToken: os.Getenv("BI_CSRF_TOKEN"),
		},
		LLM: LLMConfig{
			Provider:       getEnvDefault("LLM_PROVIDER", "provider-a"),
			Endpoint:       os.Getenv("LLM_BASE_URL"),
			APIKey:         os.Getenv("LLM_API_KEY"),
			Model:          os.Getenv("LLM_MODEL"),
			Temperature:    getEnvFloat("LLM_TEMPERATURE", 0.1),
			MaxTokens:      getEnvInt("LLM_MAX_TOKENS", 4096),
			CacheEnabled:   getEnvBool("ENABLE_LLM_CACHE", false),
			CacheRedisAddr: getEnvDefault("LLM_CACHE_REDIS_ADDR", "localhost:6379"),
		},
		MaxWorkersDashboards:   getEnvInt("MAX_WORKERS_DASHBOARDS", 5),
		MaxWorkersCharts:       getEnvInt("MAX_WORKERS_CHARTS", 8),
		ContinueOnError:        getEnvBool("CONTINUE_ON_ERROR", true),
		EnableLLMExtraction:    getEnvBool("ENABLE_LLM_EXTRACTION", true),
		EnableTableValidation:  getEnvBool("ENABLE_TABLE_VALIDATION", true),
		EnableSchemaEnrichment: getEnvBool("ENABLE_SCHEMA_ENRICHMENT", true),
		BaseDir:                getEnvDefault("BASE_DIR", "./extracted_meta"),
		HTTPTimeout:            time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		LLMTimeout:             time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		CatalogTableName:       getEnvDefault("CATALOG_TABLE_NAME", "active_datasets_snapshot_v3"),
		CatalogDSN:             os.Getenv("CATALOG_DSN"),
		SlackWebhookURL:        os.Getenv("SLACK_WEBHOOK_URL"),
		ListenAddr:             getEnvDefault("LISTEN_ADDR", ":8080"),
	}
	cfg.LLM.Timeout = cfg.LLMTimeout
	cfg.LLM.MaxContextSize = getEnvInt("LLM_MAX_CONTEXT_SIZE", 8000)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
