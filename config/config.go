/*
Package config loads the server configuration.

PRECEDENCE:
  environment (DATERANGE_ prefix, "." -> "_") > config file > defaults

  DATERANGE_SERVER_PORT=3000
  DATERANGE_DB_PATH=/var/lib/daterange/engine.db
  DATERANGE_AUTOGENERATION_SCHEDULE="0 2 * * *"

FILE:
  config.yaml in ./config or the working directory, or the path given to
  Load. A missing default file is not an error.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config is the whole server configuration.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"db"`
	Log            LogConfig            `mapstructure:"log"`
	Sentry         SentryConfig         `mapstructure:"sentry"`
	Autogeneration AutogenerationConfig `mapstructure:"autogeneration"`
	Entries        EntriesConfig        `mapstructure:"entries"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig locates the SQLite database. ":memory:" keeps everything
// in memory.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN     string `mapstructure:"dsn"`
	Env     string `mapstructure:"env"`
	Release string `mapstructure:"release"`
}

// AutogenerationConfig schedules the sweep. Schedule is a standard cron
// expression or a descriptor such as "@daily".
type AutogenerationConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// EntriesConfig picks the type whose ranges label listed entries.
type EntriesConfig struct {
	AssignTypeCode string `mapstructure:"assign_type_code"`
}

// Load reads the configuration from path (optional), the environment and
// defaults, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"*"})

	v.SetDefault("db.path", "daterange.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "dev")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.env", "dev")
	v.SetDefault("sentry.release", "")

	v.SetDefault("autogeneration.enabled", true)
	v.SetDefault("autogeneration.schedule", "@daily")

	v.SetDefault("entries.assign_type_code", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DATERANGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server can't start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("invalid config: db.path is required")
	}
	if c.Autogeneration.Enabled {
		if _, err := cron.ParseStandard(c.Autogeneration.Schedule); err != nil {
			return fmt.Errorf("invalid config: autogeneration.schedule: %w", err)
		}
	}
	return nil
}
