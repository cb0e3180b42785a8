package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Query    QueryConfig    `yaml:"query" mapstructure:"query"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures where sale records are fetched from.
type SourceConfig struct {
	Location    string `yaml:"location" mapstructure:"location"`
	Profile     string `yaml:"profile" mapstructure:"profile"`
	Encoding    string `yaml:"encoding" mapstructure:"encoding"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// PipelineConfig configures coercion and baseline exclusions. An
// explicit profile file overrides these keys.
type PipelineConfig struct {
	DateFormat                string `yaml:"date_format" mapstructure:"date_format"`
	StrictNumericCoercion     bool   `yaml:"strict_numeric_coercion" mapstructure:"strict_numeric_coercion"`
	ExcludeLowVolumeThreshold *int64 `yaml:"exclude_low_volume_threshold" mapstructure:"exclude_low_volume_threshold"`
}

// QueryConfig configures default query behavior.
type QueryConfig struct {
	Top                 int  `yaml:"top" mapstructure:"top"`
	IncludeUnknownYears bool `yaml:"include_unknown_years" mapstructure:"include_unknown_years"`
}

// CacheConfig configures the in-process snapshot store.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
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
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".popdash"))
	}

	// Environment
	v.SetEnvPrefix("POPDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.user_agent", "popdash/1.0")
	v.SetDefault("pipeline.date_format", "2006-01-02")
	v.SetDefault("pipeline.strict_numeric_coercion", true)
	v.SetDefault("pipeline.exclude_low_volume_threshold", 1)
	v.SetDefault("query.top", 10)
	v.SetDefault("query.include_unknown_years", false)
	v.SetDefault("cache.max_entries", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
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

	// An explicit YAML null falls through viper's lookup chain to the
	// default, which would quietly re-enable the exclusion. Recover the
	// null from the raw section map: null disables the exclusion.
	if section, ok := v.Get("pipeline").(map[string]any); ok {
		if raw, exists := section["exclude_low_volume_threshold"]; exists && raw == nil {
			cfg.Pipeline.ExcludeLowVolumeThreshold = nil
		}
	}

	return &cfg, nil
}

// Validate checks the configuration for the given run mode and
// collects every failure into a single error.
func (c *Config) Validate(mode string) error {
	var errs *multierror.Error

	// Checks shared by all modes.
	if c.Pipeline.DateFormat == "" {
		errs = multierror.Append(errs, eris.New("pipeline.date_format is required"))
	}
	if t := c.Pipeline.ExcludeLowVolumeThreshold; t != nil && *t < 0 {
		errs = multierror.Append(errs, eris.New("pipeline.exclude_low_volume_threshold must be >= 0 when set"))
	}
	if c.Source.TimeoutSecs <= 0 {
		errs = multierror.Append(errs, eris.New("source.timeout_secs must be > 0"))
	}
	if c.Source.MaxRetries < 0 || c.Source.MaxRetries > 10 {
		errs = multierror.Append(errs, eris.New("source.max_retries must be between 0 and 10"))
	}
	if c.Query.Top < 1 || c.Query.Top > 100 {
		errs = multierror.Append(errs, eris.New("query.top must be between 1 and 100"))
	}

	switch mode {
	case "inspect", "query":
		// Source location may arrive as a positional argument, so it
		// is not required here.
	case "serve":
		if c.Source.Location == "" {
			errs = multierror.Append(errs, eris.New("source.location is required"))
		}
		if c.Server.Port <= 0 {
			errs = multierror.Append(errs, eris.New("server.port must be > 0"))
		}
		if c.Cache.MaxEntries <= 0 {
			errs = multierror.Append(errs, eris.New("cache.max_entries must be > 0"))
		}
		if c.Server.ShutdownTimeoutSecs <= 0 {
			errs = multierror.Append(errs, eris.New("server.shutdown_timeout_secs must be > 0"))
		}
	default:
		errs = multierror.Append(errs, eris.Errorf("unknown mode %q", mode))
	}

	return errs.ErrorOrNil()
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
