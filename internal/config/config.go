package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Crawl      CrawlConfig      `yaml:"crawl" mapstructure:"crawl"`
	Analyze    AnalyzeConfig    `yaml:"analyze" mapstructure:"analyze"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // postgres or sqlite
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// OpenAIConfig holds settings for OpenAI-compatible endpoints.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina AI Reader settings (fetch fallback).
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	Headless         bool   `yaml:"headless" mapstructure:"headless"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	Screenshots      bool   `yaml:"screenshots" mapstructure:"screenshots"`
}

// CrawlConfig configures link discovery and probing.
type CrawlConfig struct {
	ProbeTimeoutSecs int      `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
	ExcludePaths     []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// AnalyzeConfig holds per-run defaults.
type AnalyzeConfig struct {
	TextModel       string `yaml:"text_model" mapstructure:"text_model"`
	VisionModel     string `yaml:"vision_model" mapstructure:"vision_model"`
	CheapModel      string `yaml:"cheap_model" mapstructure:"cheap_model"`
	Depth           int    `yaml:"depth" mapstructure:"depth"`
	MaxPromptBytes  int    `yaml:"max_prompt_bytes" mapstructure:"max_prompt_bytes"`
	CallTimeoutSecs int    `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	MaxVisualPages  int    `yaml:"max_visual_pages" mapstructure:"max_visual_pages"`
	MaxVisualIssues int    `yaml:"max_visual_issues" mapstructure:"max_visual_issues"`
	QualityCheck    bool   `yaml:"quality_check" mapstructure:"quality_check"`
}

// BatchConfig configures batch orchestration.
type BatchConfig struct {
	MaxAttempts   int   `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffSecs   []int `yaml:"backoff_secs" mapstructure:"backoff_secs"`
	ItemPauseSecs int   `yaml:"item_pause_secs" mapstructure:"item_pause_secs"`
}

// PricingConfig holds pricing rate overrides.
type PricingConfig struct {
	Models             map[string]ModelPricing `yaml:"models" mapstructure:"models"`
	JinaPerMTok        float64                 `yaml:"jina_per_mtok" mapstructure:"jina_per_mtok"`
	PerplexityPerQuery float64                 `yaml:"perplexity_per_query" mapstructure:"perplexity_per_query"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// ReportConfig configures markdown report output.
type ReportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", filepath.Join(xdg.DataHome, "audit-cli", "audit.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("report.dir", filepath.Join(xdg.DataHome, "audit-cli", "reports"))
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	v.SetDefault("browser.fetch_timeout_secs", 30)
	v.SetDefault("browser.screenshots", true)
	v.SetDefault("crawl.probe_timeout_secs", 10)
	v.SetDefault("crawl.exclude_paths", []string{"/careers/*", "/privacy*", "/terms*", "/cart/*", "/login*"})
	v.SetDefault("analyze.text_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("analyze.vision_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("analyze.cheap_model", "claude-haiku-4-5-20251001")
	v.SetDefault("analyze.depth", 3)
	v.SetDefault("analyze.max_prompt_bytes", 48*1024)
	v.SetDefault("analyze.call_timeout_secs", 120)
	v.SetDefault("analyze.max_visual_pages", 3)
	v.SetDefault("analyze.max_visual_issues", 8)
	v.SetDefault("analyze.quality_check", true)
	v.SetDefault("batch.max_attempts", 4)
	v.SetDefault("batch.backoff_secs", []int{5, 15, 45})
	v.SetDefault("batch.item_pause_secs", 2)
	v.SetDefault("pricing.jina_per_mtok", 0.02)
	v.SetDefault("pricing.perplexity_per_query", 0.005)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
