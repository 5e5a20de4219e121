package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/sortelab/lotogenius/internal/models"
)

// Config represents the complete application configuration.
type Config struct {
	Caixa    CaixaConfig    `mapstructure:"caixa"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CaixaConfig holds upstream lottery API configuration.
type CaixaConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	MirrorURL  string        `mapstructure:"mirror_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	MaxDraws   int           `mapstructure:"max_draws"`
}

// AnalysisConfig holds analysis and generation behavior configuration.
type AnalysisConfig struct {
	Variants     []string      `mapstructure:"variants"`
	GamesPerRun  int           `mapstructure:"games_per_run"`
	UserID       string        `mapstructure:"user_id"`
	MinSample    int           `mapstructure:"min_sample"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds result cache configuration.
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	MaxResults int    `mapstructure:"max_results"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("LOTOGENIUS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("caixa.base_url", "https://servicebus2.caixa.gov.br/portaldeloterias/api")
	v.SetDefault("caixa.mirror_url", "https://loteriascaixa-api.herokuapp.com/api")
	v.SetDefault("caixa.timeout", "15s")
	v.SetDefault("caixa.max_retries", 2)
	v.SetDefault("caixa.retry_delay", "500ms")
	v.SetDefault("caixa.batch_size", 10)
	v.SetDefault("caixa.batch_delay", "300ms")
	v.SetDefault("caixa.max_draws", 250)

	v.SetDefault("analysis.variants", []string{"lotofacil", "megasena"})
	v.SetDefault("analysis.games_per_run", 6)
	v.SetDefault("analysis.user_id", "daemon")
	v.SetDefault("analysis.min_sample", 50)
	v.SetDefault("analysis.poll_interval", "6h")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("storage.db_path", "./data/lotogenius.db")
	v.SetDefault("storage.max_results", 500)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Caixa.BaseURL == "" {
		return fmt.Errorf("caixa.base_url is required")
	}
	if c.Caixa.Timeout < time.Second {
		return fmt.Errorf("caixa.timeout must be at least 1 second")
	}
	if c.Caixa.MaxRetries < 0 {
		return fmt.Errorf("caixa.max_retries must not be negative")
	}
	if c.Caixa.BatchSize < 1 || c.Caixa.BatchSize > 50 {
		return fmt.Errorf("caixa.batch_size must be between 1 and 50")
	}
	if c.Caixa.MaxDraws < 1 || c.Caixa.MaxDraws > 2000 {
		return fmt.Errorf("caixa.max_draws must be between 1 and 2000")
	}

	if len(c.Analysis.Variants) == 0 {
		return fmt.Errorf("analysis.variants must contain at least one variant")
	}
	for _, slug := range c.Analysis.Variants {
		if _, ok := models.VariantBySlug(slug); !ok {
			return fmt.Errorf("analysis.variants contains unknown variant %q", slug)
		}
	}
	if c.Analysis.GamesPerRun < 1 || c.Analysis.GamesPerRun > 50 {
		return fmt.Errorf("analysis.games_per_run must be between 1 and 50")
	}
	if c.Analysis.UserID == "" {
		return fmt.Errorf("analysis.user_id is required")
	}
	if c.Analysis.MinSample < 1 {
		return fmt.Errorf("analysis.min_sample must be at least 1")
	}
	if c.Analysis.PollInterval < time.Minute {
		return fmt.Errorf("analysis.poll_interval must be at least 1 minute")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Storage.MaxResults < 1 {
		return fmt.Errorf("storage.max_results must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
