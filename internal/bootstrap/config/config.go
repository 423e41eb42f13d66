package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tradewatch/internal/bootstrap/logging"
	"tradewatch/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type SourceConfig struct {
	// Directory holding provider export files, one per source type
	// (senate.json, house.json, insiders.json).
	InputDir string `mapstructure:"input_dir"`
}

type SyncConfig struct {
	PageSize  int `mapstructure:"page_size"`
	MaxPages  int `mapstructure:"max_pages"`
	BatchSize int `mapstructure:"batch_size"`

	// How long resolved entity ids stay memoized in the cache.
	ResolverCacheTTL time.Duration `mapstructure:"resolver_cache_ttl"`
}

type AlertsConfig struct {
	// Alert quota per subscription tier.
	Quotas map[string]int `mapstructure:"quotas"`
}

type MetricsConfig struct {
	// Prometheus exposition address ("127.0.0.1:9090"); empty disables it.
	Listen string `mapstructure:"listen"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Sync.PageSize <= 0 || cfg.Sync.BatchSize <= 0 || cfg.Sync.MaxPages <= 0 {
		return Config{}, errors.New("sync.page_size, sync.max_pages and sync.batch_size must be positive")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tradewatch")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/tradewatch.sqlite")
	v.SetDefault("source.input_dir", "data/source")
	v.SetDefault("sync.page_size", 100)
	v.SetDefault("sync.max_pages", 10)
	v.SetDefault("sync.batch_size", 50)
	v.SetDefault("sync.resolver_cache_ttl", "12h")
	v.SetDefault("alerts.quotas", map[string]int{
		"free":    3,
		"pro":     20,
		"premium": 100,
	})
	v.SetDefault("metrics.listen", "")
}
