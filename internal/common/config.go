package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Scraper     ScraperConfig   `toml:"scraper"`
	Quotes      QuotesConfig    `toml:"quotes"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Refresh     RefreshConfig   `toml:"refresh"`
	Ledger      LedgerConfig    `toml:"ledger"`
}

type StorageConfig struct {
	Badger    BadgerConfig    `toml:"badger"`
	Documents DocumentsConfig `toml:"documents"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// DocumentsConfig describes the scraped-document store on the filesystem
type DocumentsConfig struct {
	Dir string `toml:"dir"` // Directory holding one {TICKER}.json per company
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// RetrievalConfig tunes the RAG retrieval pipeline
type RetrievalConfig struct {
	ContextK    int    `toml:"context_k"`    // Chunks per company in a grounding context (default: 3)
	AutoRefresh bool   `toml:"auto_refresh"` // Rebuild the index before a query when documents changed
	EmbedModel  string `toml:"embed_model"`  // Embedding model name (default: "gemini-embedding-001")
	EmbedDim    int    `toml:"embed_dim"`    // Embedding output dimensionality (default: 768)
}

// ScraperConfig configures the screener.in scraper
type ScraperConfig struct {
	BaseURL        string `toml:"base_url"`        // Default: "https://www.screener.in"
	UserAgent      string `toml:"user_agent"`      // Browser-like user agent for polite scraping
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout duration string (default: "30s")
	RequestDelay   string `toml:"request_delay"`   // Minimum delay between requests (default: "2s")
}

// QuotesConfig configures the live-quote client
type QuotesConfig struct {
	BaseURL        string `toml:"base_url"`        // Default: Yahoo Finance chart API
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout duration string (default: "10s")
	RateLimit      int    `toml:"rate_limit"`      // Requests per second (default: 5)
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google API key (prefer env or KV store)
	ChatModel   string  `toml:"chat_model"`  // Chat model (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Chat completion temperature (default: 0.2)
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (prefer env or KV store)
	Model       string  `toml:"model"`       // Chat model (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

type LLMConfig struct {
	DefaultProvider string `toml:"default_provider"` // Chat provider: "gemini" or "claude" (default: "gemini")
}

// RefreshConfig controls the optional scheduled re-scrape of tracked tickers.
// The content-fingerprint check remains the consistency mechanism; this only
// keeps source documents from going stale between queries.
type RefreshConfig struct {
	Enabled  bool     `toml:"enabled"`  // Disabled by default - user must explicitly opt-in
	Schedule string   `toml:"schedule"` // Cron schedule format (default: "0 0 8 * * *")
	Tickers  []string `toml:"tickers"`  // Tickers to re-scrape on schedule; empty = all indexed
}

type LedgerConfig struct {
	DefaultQuantity int `toml:"default_quantity"` // Order quantity when none given (default: 10)
}

// NewDefaultConfig returns the baseline configuration before file and env merges
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/db",
			},
			Documents: DocumentsConfig{
				Dir: "./data/scraped",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
		Retrieval: RetrievalConfig{
			ContextK:    3,
			AutoRefresh: true,
			EmbedModel:  "gemini-embedding-001",
			EmbedDim:    768,
		},
		Scraper: ScraperConfig{
			BaseURL:        "https://www.screener.in",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout: "30s",
			RequestDelay:   "2s",
		},
		Quotes: QuotesConfig{
			BaseURL:        "https://query1.finance.yahoo.com",
			RequestTimeout: "10s",
			RateLimit:      5,
		},
		Gemini: GeminiConfig{
			ChatModel:   "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.2,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
		},
		Refresh: RefreshConfig{
			Enabled:  false,
			Schedule: "0 0 8 * * *", // Daily at 08:00, after NSE data settles
		},
		Ledger: LedgerConfig{
			DefaultQuantity: 10,
		},
	}
}

// LoadFromFile loads configuration from a single TOML file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration by merging TOML files in order
// (later files override earlier ones), then applying env overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("EQUITYSCOPE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if dir := os.Getenv("EQUITYSCOPE_DATA_DIR"); dir != "" {
		config.Storage.Documents.Dir = dir
	}
	if path := os.Getenv("EQUITYSCOPE_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if level := os.Getenv("EQUITYSCOPE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if provider := os.Getenv("EQUITYSCOPE_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}
	if key := os.Getenv("EQUITYSCOPE_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("EQUITYSCOPE_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	if k := os.Getenv("EQUITYSCOPE_CONTEXT_K"); k != "" {
		if n, err := strconv.Atoi(k); err == nil && n > 0 {
			config.Retrieval.ContextK = n
		}
	}
}

func (c *Config) validate() error {
	if c.Retrieval.ContextK <= 0 {
		return fmt.Errorf("retrieval.context_k must be positive, got %d", c.Retrieval.ContextK)
	}
	if c.Retrieval.EmbedDim <= 0 {
		return fmt.Errorf("retrieval.embed_dim must be positive, got %d", c.Retrieval.EmbedDim)
	}
	if c.LLM.DefaultProvider != "gemini" && c.LLM.DefaultProvider != "claude" {
		return fmt.Errorf("llm.default_provider must be 'gemini' or 'claude', got %q", c.LLM.DefaultProvider)
	}
	if c.Refresh.Enabled {
		if err := ValidateRefreshSchedule(c.Refresh.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRefreshSchedule checks a cron expression using the same parser
// the scheduler runs with (seconds field included).
func ValidateRefreshSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("refresh.schedule is required when refresh is enabled")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid refresh.schedule %q: %w", schedule, err)
	}
	return nil
}

// ResolveAPIKey resolves an API key with precedence: environment variable,
// KV store, config fallback. Returns an error when no source yields a key.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"EQUITYSCOPE_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"EQUITYSCOPE_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ParseDurationOr parses a duration string, falling back to def on failure.
func ParseDurationOr(value string, def time.Duration, logger arbor.ILogger) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		if logger != nil {
			logger.Warn().Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		}
		return def
	}
	return d
}
