// Package config loads application configuration from config.yaml and
// SCOUT_* environment variables, and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Site      SiteConfig      `yaml:"site" mapstructure:"site"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
	Commute   CommuteConfig   `yaml:"commute" mapstructure:"commute"`
	Job       JobConfig       `yaml:"job" mapstructure:"job"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the candidate table backend. A .xlsx path
// selects the workbook store, anything else SQLite.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SiteConfig holds the target site and credentials.
type SiteConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Login    string `yaml:"login" mapstructure:"login"`
	Password string `yaml:"password" mapstructure:"password"`
}

// BrowserConfig configures the Playwright session.
type BrowserConfig struct {
	Headless       bool   `yaml:"headless" mapstructure:"headless"`
	StatePath      string `yaml:"state_path" mapstructure:"state_path"`
	NavTimeoutSecs int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	NavPerMinute   int    `yaml:"nav_per_minute" mapstructure:"nav_per_minute"`
}

// AnthropicConfig holds scoring model settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScanConfig configures the discovery walk.
type ScanConfig struct {
	Query       string `yaml:"query" mapstructure:"query"`
	CutoffHours int    `yaml:"cutoff_hours" mapstructure:"cutoff_hours"`
	MaxPages    int    `yaml:"max_pages" mapstructure:"max_pages"`
}

// CommuteConfig configures travel-time estimation.
type CommuteConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Origin  string `yaml:"origin" mapstructure:"origin"`
}

// JobConfig points at the job description used for scoring.
type JobConfig struct {
	SpecPath string `yaml:"spec_path" mapstructure:"spec_path"`
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
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "scout.db")
	v.SetDefault("site.base_url", "https://nashanyanya.ru")
	v.SetDefault("site.login", "")
	v.SetDefault("site.password", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("commute.origin", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.state_path", ".scout-state.json")
	v.SetDefault("browser.nav_timeout_secs", 30)
	v.SetDefault("browser.nav_per_minute", 20)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("scan.query", "")
	v.SetDefault("scan.cutoff_hours", 48)
	v.SetDefault("scan.max_pages", 20)
	v.SetDefault("commute.enabled", true)
	v.SetDefault("job.spec_path", "job.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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
