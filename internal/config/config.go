package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is constructed once at
// process start and injected; business logic never reads the environment.
type Config struct {
	OpenAI   OpenAIConfig   `yaml:"openai" mapstructure:"openai"`
	Generate GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// OpenAIConfig holds upstream completions API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// GenerateConfig configures the generation pipelines.
type GenerateConfig struct {
	TimeoutMs int `yaml:"timeout_ms" mapstructure:"timeout_ms"`
}

// Timeout returns the per-call generation timeout.
func (c GenerateConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ReportConfig configures the report aggregator.
type ReportConfig struct {
	TimeoutMs   int     `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Timeout returns the per-unit report timeout. Shorter than the generation
// timeout so the aggregate latency budget stays bounded as unit count grows.
func (c ReportConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ScrapeConfig configures website fetching for summaries.
type ScrapeConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars    int `yaml:"max_chars" mapstructure:"max_chars"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("AIVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional variable names work without the prefix.
	_ = v.BindEnv("openai.key", "AIVIS_OPENAI_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "AIVIS_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("openai.model", "AIVIS_OPENAI_MODEL", "OPENAI_MODEL")

	// Defaults
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("generate.timeout_ms", 60000)
	v.SetDefault("report.timeout_ms", 25000)
	v.SetDefault("report.concurrency", 4)
	v.SetDefault("report.rate_limit", 0)
	v.SetDefault("scrape.timeout_secs", 15)
	v.SetDefault("scrape.max_chars", 6000)
	v.SetDefault("server.port", 8790)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
