// Package config loads the application configuration from an optional
// config.yaml plus REGISTRY_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zimhealth/registry-cli/internal/fetcher"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Dedupe DedupeConfig `yaml:"dedupe" mapstructure:"dedupe"`
	Schema SchemaConfig `yaml:"schema" mapstructure:"schema"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig holds the store and batch file locations.
type DataConfig struct {
	StorePath      string `yaml:"store_path" mapstructure:"store_path"`
	ScrapedPath    string `yaml:"scraped_path" mapstructure:"scraped_path"`
	HistoricalPath string `yaml:"historical_path" mapstructure:"historical_path"`
	FullPath       string `yaml:"full_path" mapstructure:"full_path"`
	RawDir         string `yaml:"raw_dir" mapstructure:"raw_dir"`
}

// DedupeConfig holds the fuzzy-match thresholds and trusted source labels.
type DedupeConfig struct {
	Threshold      float64  `yaml:"threshold" mapstructure:"threshold"`
	HighConfidence float64  `yaml:"high_confidence" mapstructure:"high_confidence"`
	TrustedSources []string `yaml:"trusted_sources" mapstructure:"trusted_sources"`
}

// SchemaConfig points at an optional classification rule override file.
type SchemaConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// FetchConfig configures remote raw source downloads.
type FetchConfig struct {
	UserAgent   string                 `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int                    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int                    `yaml:"max_retries" mapstructure:"max_retries"`
	Sources     []fetcher.RemoteSource `yaml:"sources" mapstructure:"sources"`
}

// ServerConfig configures the read-only API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	HistoryPath string `yaml:"history_path" mapstructure:"history_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("REGISTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.store_path", "data/hospitals.json")
	v.SetDefault("data.scraped_path", "data/hospitals_scraped_new.json")
	v.SetDefault("data.historical_path", "data/hospitals_scraped_full.json")
	v.SetDefault("data.full_path", "data/hospitals_full.json")
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("dedupe.threshold", 88.0)
	v.SetDefault("dedupe.high_confidence", 92.0)
	v.SetDefault("dedupe.trusted_sources", []string{
		"hpa_registered_facilities",
		"mcaz_pharmacies_2024",
		"mohcc_official",
	})
	v.SetDefault("fetch.user_agent", "registry-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.history_path", "data/history.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if len(cfg.Fetch.Sources) == 0 {
		cfg.Fetch.Sources = fetcher.DefaultRemoteSources()
	}

	return &cfg, nil
}

// TrustedSet returns the trusted source labels as a lookup set.
func (c *Config) TrustedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Dedupe.TrustedSources))
	for _, label := range c.Dedupe.TrustedSources {
		set[label] = struct{}{}
	}
	return set
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
