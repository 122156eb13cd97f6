// Package config loads application configuration from file and
// environment and initializes the global logger.
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
	Store      StoreConfig     `yaml:"store" mapstructure:"store"`
	Reconcile  ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Finance    FinanceConfig   `yaml:"finance" mapstructure:"finance"`
	Catalog    CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Vision     VisionConfig    `yaml:"vision" mapstructure:"vision"`
	Blueprint  ProviderConfig  `yaml:"blueprint" mapstructure:"blueprint"`
	Regulatory ProviderConfig  `yaml:"regulatory" mapstructure:"regulatory"`
	Server     ServerConfig    `yaml:"server" mapstructure:"server"`
	Log        LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ReconcileConfig tunes the reconciliation pass.
type ReconcileConfig struct {
	ConflictTolerance float64 `yaml:"conflict_tolerance" mapstructure:"conflict_tolerance"`
	StrictIntegrity   bool    `yaml:"strict_integrity" mapstructure:"strict_integrity"` // panic on integrity violations instead of logging
}

// FinanceConfig tunes the financial rollup.
type FinanceConfig struct {
	TaxRate      float64 `yaml:"tax_rate" mapstructure:"tax_rate"`
	ProgressMode string  `yaml:"progress_mode" mapstructure:"progress_mode"` // "cost" or "count"
}

// CatalogConfig points at an optional catalog override file.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// VisionConfig holds the visual analysis provider settings.
type VisionConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ProviderConfig holds settings for an HTTP analysis provider.
type ProviderConfig struct {
	Key     string  `yaml:"key" mapstructure:"key"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
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
	v.SetEnvPrefix("SITETRUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sitetruth.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("reconcile.conflict_tolerance", 0.10)
	v.SetDefault("reconcile.strict_integrity", false)
	v.SetDefault("finance.tax_rate", 0.13)
	v.SetDefault("finance.progress_mode", "cost")
	v.SetDefault("vision.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("blueprint.base_url", "https://api.buildlane.dev/blueprint")
	v.SetDefault("blueprint.rps", 2)
	v.SetDefault("regulatory.base_url", "https://api.buildlane.dev/regulatory")
	v.SetDefault("regulatory.rps", 2)

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
