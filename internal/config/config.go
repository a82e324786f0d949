// Package config loads and validates tool configuration from file,
// environment, and defaults, and builds the shared logger.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// DeviceConfig identifies the switch to check and how to authenticate.
// An empty host means the tool assumes it is running on the switch itself
// unless the local CLI marker is missing, in which case the user is prompted.
type DeviceConfig struct {
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CollectConfig tunes command execution.
type CollectConfig struct {
	// Timeout bounds each individual command.
	Timeout time.Duration `mapstructure:"timeout"`
	// Workers is the number of commands executed concurrently.
	// 1 preserves strictly sequential collection.
	Workers int `mapstructure:"workers" validate:"min=1"`
	// EAPIRate caps eAPI requests per second.
	EAPIRate float64 `mapstructure:"eapi_rate" validate:"gt=0"`
}

// ThresholdConfig holds the percentage boundaries used to classify
// memory, CPU, and filesystem utilization.
type ThresholdConfig struct {
	Warn float64 `mapstructure:"warn" validate:"gte=0,lte=100"`
	Crit float64 `mapstructure:"crit" validate:"gte=0,lte=100,gtfield=Warn"`
	// FlapCount is the syslog occurrence count above which an interface
	// or BGP peer is reported as flapping.
	FlapCount int `mapstructure:"flap_count" validate:"min=0"`
}

// RenderConfig controls report output.
type RenderConfig struct {
	Format string `mapstructure:"format" validate:"oneof=text json yaml"`
	Color  string `mapstructure:"color" validate:"oneof=auto always never"`
}

// ArchiveConfig controls where run artifacts land.
type ArchiveConfig struct {
	// Dir receives the plain-text log file. Empty selects /mnt/flash when
	// it exists (on-box) and the working directory otherwise.
	Dir string `mapstructure:"dir"`
	// Database is the SQLite run-history path. Empty disables history.
	Database string `mapstructure:"database"`
}

// SFTPConfig presets the interactive upload destination.
type SFTPConfig struct {
	// Dest is a user@host:/path/ upload target offered as the default.
	Dest string `mapstructure:"dest"`
}

// S3Config configures optional object-storage upload of run artifacts.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket" validate:"required_with=Endpoint"`
	AccessKey string `mapstructure:"access_key" validate:"required_with=Endpoint"`
	SecretKey string `mapstructure:"secret_key" validate:"required_with=AccessKey"`
	Prefix    string `mapstructure:"prefix"`
	Secure    bool   `mapstructure:"secure"`
}

// TransferConfig groups the upload targets.
type TransferConfig struct {
	SFTP SFTPConfig `mapstructure:"sftp"`
	S3   S3Config   `mapstructure:"s3"`
}

// NotifyConfig configures alerting for degraded runs.
type NotifyConfig struct {
	// URL is a shoutrrr service URL. ${VAR} references are expanded from
	// the environment so secrets can stay out of the file.
	URL string `mapstructure:"url"`
	// Template overrides the default message template.
	Template string `mapstructure:"template"`
}

// ServeConfig configures the long-running monitor mode.
type ServeConfig struct {
	Listen string `mapstructure:"listen" validate:"required"`
	// Schedule is a standard cron expression. When set it takes
	// precedence over Interval.
	Schedule string        `mapstructure:"schedule"`
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File enables an additional rotating JSON log sink when non-empty.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Config is the root configuration for the tool.
type Config struct {
	Device     DeviceConfig    `mapstructure:"device"`
	Collect    CollectConfig   `mapstructure:"collect"`
	Thresholds ThresholdConfig `mapstructure:"thresholds"`
	Render     RenderConfig    `mapstructure:"render"`
	Archive    ArchiveConfig   `mapstructure:"archive"`
	Transfer   TransferConfig  `mapstructure:"transfer"`
	Notify     NotifyConfig    `mapstructure:"notify"`
	Serve      ServeConfig     `mapstructure:"serve"`
	Logging    LoggingConfig   `mapstructure:"logging"`

	// File is the config file actually read, empty when running on
	// defaults and environment alone.
	File string `mapstructure:"-"`
}

// setDefaults registers a default for every key so environment overrides
// are visible to Unmarshal even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("device.host", "")
	v.SetDefault("device.username", "admin")
	v.SetDefault("device.password", "")

	v.SetDefault("collect.timeout", 60*time.Second)
	v.SetDefault("collect.workers", 1)
	v.SetDefault("collect.eapi_rate", 5.0)

	v.SetDefault("thresholds.warn", health.DefaultThresholds.Warn)
	v.SetDefault("thresholds.crit", health.DefaultThresholds.Crit)
	v.SetDefault("thresholds.flap_count", 2)

	v.SetDefault("render.format", "text")
	v.SetDefault("render.color", "auto")

	v.SetDefault("archive.dir", "")
	v.SetDefault("archive.database", "")

	v.SetDefault("transfer.sftp.dest", "")
	v.SetDefault("transfer.s3.endpoint", "")
	v.SetDefault("transfer.s3.bucket", "")
	v.SetDefault("transfer.s3.access_key", "")
	v.SetDefault("transfer.s3.secret_key", "")
	v.SetDefault("transfer.s3.prefix", "")
	v.SetDefault("transfer.s3.secure", true)

	v.SetDefault("notify.url", "")
	v.SetDefault("notify.template", "")

	v.SetDefault("serve.listen", ":9120")
	v.SetDefault("serve.schedule", "")
	v.SetDefault("serve.interval", 10*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}

// Load reads configuration in precedence order: explicit file (when path is
// non-empty), then eos-healthcheck.yaml from the working directory,
// $HOME/.eos-healthcheck/, or /etc/eos-healthcheck/, then EOSHC_* environment
// variables, then defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("eos-healthcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.eos-healthcheck")
		v.AddConfigPath("/etc/eos-healthcheck")
	}

	v.SetEnvPrefix("EOSHC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints that bad files or environments
// would otherwise let through.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return fmt.Errorf("invalid config: %s fails %q constraint", strings.ToLower(f.Namespace()), f.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Collect.Timeout < time.Second {
		return fmt.Errorf("invalid config: collect.timeout %s is below 1s", c.Collect.Timeout)
	}
	if c.Serve.Schedule == "" && c.Serve.Interval < time.Second {
		return fmt.Errorf("invalid config: serve.interval %s is below 1s", c.Serve.Interval)
	}
	return nil
}
