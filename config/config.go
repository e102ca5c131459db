package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultAddress                = "0.0.0.0:8080"
	DefaultMaxUploadBytes         = 10 << 20
	DefaultSessionTTL             = 12 * time.Hour
	DefaultSessionCleanupInterval = 10 * time.Minute
	DefaultModel                  = "gemini-2.5-flash"
	DefaultGeminiTimeout          = 60 * time.Second
	DefaultMaxAttempts            = 3
	DefaultRetryDelay             = 5 * time.Second
	DefaultDatabaseDriver         = "sqlite"
	DefaultDatabaseDSN            = "lablens.db"

	EnvPrefix      = "LABLENS"
	ConfigFileName = "lablens.conf"
)

type ServerConfig struct {
	Address                string        `mapstructure:"address"`
	CORSOrigins            []string      `mapstructure:"cors_origins"`
	MaxUploadBytes         int64         `mapstructure:"max_upload_bytes"`
	SessionTTL             time.Duration `mapstructure:"session_ttl"`
	SessionCleanupInterval time.Duration `mapstructure:"session_cleanup_interval"`
	SecureCookie           bool          `mapstructure:"secure_cookie"`
}

type GeminiConfig struct {
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  logrus.Level `mapstructure:"level"`
	Format string       `mapstructure:"format"`
	File   string       `mapstructure:"file"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// New returns a viper instance with all defaults set and flags/env bound.
// flags may be nil.
func New(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("server.session_ttl", DefaultSessionTTL)
	v.SetDefault("server.session_cleanup_interval", DefaultSessionCleanupInterval)
	v.SetDefault("server.secure_cookie", false)
	v.SetDefault("gemini.model", DefaultModel)
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.timeout", DefaultGeminiTimeout)
	v.SetDefault("gemini.max_attempts", DefaultMaxAttempts)
	v.SetDefault("gemini.retry_delay", DefaultRetryDelay)
	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.dsn", DefaultDatabaseDSN)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		_ = v.BindPFlag("server.address", flags.Lookup("addr"))
		_ = v.BindPFlag("server.cors_origins", flags.Lookup("cors-origins"))
		_ = v.BindPFlag("gemini.model", flags.Lookup("model"))
		_ = v.BindPFlag("database.driver", flags.Lookup("db-driver"))
		_ = v.BindPFlag("database.dsn", flags.Lookup("db-dsn"))
		_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
		_ = v.BindPFlag("logging.file", flags.Lookup("log-file"))
	}

	return v
}

// RegisterFlags declares the command line flags bound by New.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("addr", "a", "", "IP address and port the HTTP server listens on (default "+DefaultAddress+")")
	flags.StringSlice("cors-origins", nil, "origins allowed to call the API cross-site, comma separated")
	flags.String("model", "", "Gemini model used for component recognition (default "+DefaultModel+")")
	flags.String("db-driver", "", "scan history database driver: sqlite, mysql or postgres")
	flags.String("db-dsn", "", "scan history database DSN")
	flags.String("log-level", "", "log level: error, warn, info or debug")
	flags.String("log-file", "", "log file path, stdout when empty")
	flags.StringP("config", "c", "", "location of the config file")
}

// Load reads the config file (if any), env variables and flags into a Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/lablens")
		v.SetConfigName(ConfigFileName)
	}

	cfg := &Config{}
	if err := decodeViperConfig(v, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Address == "" {
		result = multierror.Append(result, errors.New("server.address is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		result = multierror.Append(result, fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes))
	}
	if c.Server.SessionTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("server.session_ttl must be positive, got %s", c.Server.SessionTTL))
	}
	if c.Gemini.Model == "" {
		result = multierror.Append(result, errors.New("gemini.model is required"))
	}
	if c.Gemini.MaxAttempts < 1 {
		result = multierror.Append(result, fmt.Errorf("gemini.max_attempts must be at least 1, got %d", c.Gemini.MaxAttempts))
	}
	if c.Gemini.RetryDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("gemini.retry_delay can not be negative, got %s", c.Gemini.RetryDelay))
	}
	if c.Gemini.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("gemini.timeout must be positive, got %s", c.Gemini.Timeout))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		result = multierror.Append(result, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		result = multierror.Append(result, errors.New("database.dsn is required"))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("logging.format: unsupported format %q", c.Logging.Format))
	}

	return result.ErrorOrNil()
}
