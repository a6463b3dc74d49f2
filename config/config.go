/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults
  2. Optional config.env file in the working directory or ./config
  3. Environment variables
  4. Command-line flags, applied by cmd/server

VARIABLES:
  APP_ENV         development | production   (default development)
  LOG_LEVEL       trace | debug | info | warn | error (default info)
  HTTP_HOST       listen host                (default 0.0.0.0)
  HTTP_PORT       listen port                (default 8080)
  JOURNAL_DRIVER  memory | sqlite            (default memory)
  JOURNAL_PATH    SQLite file for the sqlite driver (default inventory.db)

The default journal is memory: state is lost when the process ends.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	JournalMemory = "memory"
	JournalSQLite = "sqlite"
)

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Journal JournalConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
}

type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JournalConfig struct {
	Driver string
	Path   string
}

// Load reads configuration from the environment and an optional file.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Journal: JournalConfig{
			Driver: strings.ToLower(v.GetString("JOURNAL_DRIVER")),
			Path:   v.GetString("JOURNAL_PATH"),
		},
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("JOURNAL_DRIVER", JournalMemory)
	v.SetDefault("JOURNAL_PATH", "inventory.db")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	switch c.Journal.Driver {
	case JournalMemory:
	case JournalSQLite:
		if c.Journal.Path == "" {
			return fmt.Errorf("JOURNAL_PATH is required for the sqlite journal")
		}
	default:
		return fmt.Errorf("unknown JOURNAL_DRIVER %q", c.Journal.Driver)
	}
	return nil
}
