package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/rag-playground/internal/entity"
	pkgRetry "github.com/futig/rag-playground/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	BackendCfg BackendConfig `envPrefix:"BACKEND_"`

	RAGCfg     RAGDefaultsConfig `envPrefix:"RAG_"`
	PromptCfg  PromptConfig      `envPrefix:"PROMPT_"`
	ChatCfg    ChatConfig        `envPrefix:"CHAT_"`
	SessionCfg SessionConfig     `envPrefix:"SESSION_"`
	UploadCfg  UploadConfig      `envPrefix:"UPLOAD_"`
	CacheCfg   CacheConfig       `envPrefix:"CACHE_"`
	LogCfg     LogConfig         `envPrefix:"LOG_"`
	APICfg     APIConfig         `envPrefix:"API_"`

	// Serve everything from in-memory backends instead of the real service
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type BackendConfig struct {
	HTTPClientConfig

	AskEndpoint            string `env:"ASK_ENDPOINT" envDefault:"/ask"`
	ChatEndpoint           string `env:"CHAT_ENDPOINT" envDefault:"/chat"`
	SearchEndpoint         string `env:"SEARCH_ENDPOINT" envDefault:"/embeddings/search"`
	HistoryEndpoint        string `env:"HISTORY_ENDPOINT" envDefault:"/history"`
	ThreadsEndpoint        string `env:"THREADS_ENDPOINT" envDefault:"/threads"`
	DocumentsEndpoint      string `env:"DOCUMENTS_ENDPOINT" envDefault:"/documents"`
	DocumentUploadEndpoint string `env:"DOCUMENT_UPLOAD_ENDPOINT" envDefault:"/documents/upload"`
	AdvancedSearchEndpoint string `env:"ADVANCED_SEARCH_ENDPOINT" envDefault:"/advanced-search"`
	SearchHistoryEndpoint  string `env:"SEARCH_HISTORY_ENDPOINT" envDefault:"/search-history"`

	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"90s"`
	Token                 string        `env:"TOKEN"`
	InsecureSkipVerify    bool          `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
	Url                   string        `env:"SERVICE_URL" envDefault:"http://localhost:8080/api"`
}

// RAGDefaultsConfig seeds the orchestrator's RAG parameters.
type RAGDefaultsConfig struct {
	TopK        int     `env:"TOP_K" envDefault:"10"`
	Threshold   float64 `env:"THRESHOLD" envDefault:"0.7"`
	MaxTokens   int     `env:"MAX_TOKENS" envDefault:"4000"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0.7"`
	SearchMode  string  `env:"SEARCH_MODE" envDefault:"similarity"`
}

func (c RAGDefaultsConfig) ToEntity() entity.RAGConfig {
	return entity.RAGConfig{
		TopK:        c.TopK,
		Threshold:   c.Threshold,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		SearchMode:  entity.SearchMode(c.SearchMode),
	}
}

type PromptConfig struct {
	DefaultTemplate string `env:"DEFAULT_TEMPLATE" envDefault:"general-qa"`
}

type ChatConfig struct {
	DefaultMode       string `env:"DEFAULT_MODE" envDefault:"chat"`
	SupersedeInFlight bool   `env:"SUPERSEDE_IN_FLIGHT" envDefault:"false"`
	HistoryClearRetry bool   `env:"HISTORY_CLEAR_RETRY" envDefault:"true"`
}

type SessionConfig struct {
	FilePath string `env:"FILE" envDefault:".rag-playground/session"`
}

type UploadConfig struct {
	MaxFileSize int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"` // 10 MiB
}

type CacheConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"10m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"15m"`
}

type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	File       string `env:"FILE" envDefault:"logs/rag-playground.log"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"14"`
}

type APIConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8090"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"150s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Variables are usually set externally outside of local runs.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if err := cfg.RAGCfg.ToEntity().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("RAG defaults: %v", err))
	}

	if err := entity.Mode(cfg.ChatCfg.DefaultMode).Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("CHAT_DEFAULT_MODE: %v", err))
	}

	if cfg.UploadCfg.MaxFileSize < 1 {
		errors = append(errors, fmt.Sprintf("UPLOAD_MAX_FILE_SIZE must be positive, got %d", cfg.UploadCfg.MaxFileSize))
	}

	if cfg.SessionCfg.FilePath == "" {
		errors = append(errors, "SESSION_FILE must not be empty")
	}

	if cfg.BackendCfg.Url == "" && !cfg.EnableMocks {
		errors = append(errors, "BACKEND_SERVICE_URL is required unless ENABLE_MOCKS is set")
	}

	if cfg.LogCfg.MaxSizeMB < 1 || cfg.LogCfg.MaxSizeMB > 1024 {
		errors = append(errors, fmt.Sprintf("LOG_MAX_SIZE_MB must be between 1 and 1024, got %d", cfg.LogCfg.MaxSizeMB))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
