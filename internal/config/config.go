// Package config loads OmniTicket settings from a TOML file, environment
// variables and defaults, and builds the process logger.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// Store backends.
const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Google    GoogleConfig    `mapstructure:"google"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// StoreConfig selects where the ledger lives.
type StoreConfig struct {
	Backend         string `mapstructure:"backend"`
	SpreadsheetName string `mapstructure:"spreadsheet_name"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	SQLiteDir       string `mapstructure:"sqlite_dir"`
}

// GoogleConfig holds the session file and the OAuth client used to refresh
// tokens. Without a client id an expired token cannot be refreshed.
type GoogleConfig struct {
	TokenFile    string `mapstructure:"token_file"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `mapstructure:"key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// SyncConfig configures the sync pipeline and its schedule.
type SyncConfig struct {
	DeterministicIDs bool          `mapstructure:"deterministic_ids"`
	Interval         time.Duration `mapstructure:"interval"`
}

// ResolverConfig configures product name resolution.
type ResolverConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Home returns the OmniTicket state directory, ~/.omniticket.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".omniticket"
	}
	return filepath.Join(home, ".omniticket")
}

// Load reads configuration. An explicit path must exist; otherwise
// config.toml is looked up in ~/.omniticket and the working directory and
// may be absent. Environment variables use the OMNITICKET_ prefix with
// dots replaced by underscores (OMNITICKET_ANTHROPIC_KEY).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(Home())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("OMNITICKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home := Home()
	v.SetDefault("store.backend", BackendSheets)
	v.SetDefault("store.spreadsheet_name", "OmniTicket_DB")
	v.SetDefault("store.spreadsheet_id", "")
	v.SetDefault("store.sqlite_dir", filepath.Join(home, "data"))
	v.SetDefault("google.token_file", filepath.Join(home, "session.toml"))
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("sync.deterministic_ids", false)
	v.SetDefault("sync.interval", "30m")
	v.SetDefault("resolver.batch_size", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.addr", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSheets, BackendSQLite, BackendMemory:
	default:
		return eris.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Resolver.BatchSize < 1 {
		return eris.Errorf("config: resolver.batch_size must be positive, got %d", c.Resolver.BatchSize)
	}
	if c.Sync.Interval < time.Minute {
		return eris.Errorf("config: sync.interval must be at least 1m, got %s", c.Sync.Interval)
	}
	if c.Anthropic.MaxTokens < 1 {
		return eris.Errorf("config: anthropic.max_tokens must be positive, got %d", c.Anthropic.MaxTokens)
	}
	return nil
}

// InitLogger builds the zap logger from cfg, installs it as the global
// logger and routes the verbose facade through it. verbose forces debug
// level.
func InitLogger(cfg LogConfig, verbose bool) error {
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
	if verbose {
		level = zapcore.DebugLevel
	}
	zapCfg.Level.SetLevel(level)

	l, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(l)

	logger.SetLogger(l)
	logger.SetVerbose(verbose)
	return nil
}
