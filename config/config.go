// Package config loads server configuration from a YAML file and
// environment variables. Every setting has a default, so the server runs
// with no config file at all; environment variables use the COMPLIANCE_
// prefix with underscores (COMPLIANCE_SERVER_ADDR overrides server.addr).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig contains database settings. Path ":memory:" runs the
// store in memory.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// MonitorConfig controls the renewal deadline monitor.
type MonitorConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Interval    time.Duration `mapstructure:"interval"`
	HorizonDays int           `mapstructure:"horizon_days"`
}

// RulesConfig selects the active rule table: a registered jurisdiction,
// optionally overridden by a JSON table file.
type RulesConfig struct {
	Jurisdiction string `mapstructure:"jurisdiction"`
	TableFile    string `mapstructure:"table_file"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from the given file (optional) and the
// environment, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("COMPLIANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("storage.path", "./compliance.db")

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval", "1h")
	v.SetDefault("monitor.horizon_days", 90)

	v.SetDefault("rules.jurisdiction", "nh-cpa")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if c.Monitor.Enabled {
		if c.Monitor.Interval <= 0 {
			return fmt.Errorf("monitor interval must be positive")
		}
		if c.Monitor.HorizonDays <= 0 {
			return fmt.Errorf("monitor horizon must be positive")
		}
	}
	if c.Rules.Jurisdiction == "" && c.Rules.TableFile == "" {
		return fmt.Errorf("a rules jurisdiction or table file is required")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	return nil
}

// Logger builds the process logger from the logging settings.
func (c *Config) Logger() zerolog.Logger {
	level, _ := zerolog.ParseLevel(c.Logging.Level)

	var logger zerolog.Logger
	if c.Logging.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
