package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKS_SERVER_PORT.
const EnvPrefix = "TASKS"

var defaults = map[string]any{
	"server.port":                  8080,
	"server.log_level":             "info",
	"server.read_timeout":          15 * time.Second,
	"server.write_timeout":         15 * time.Second,
	"server.idle_timeout":          60 * time.Second,
	"server.shutdown_timeout":      10 * time.Second,
	"database.url":                 "",
	"database.max_open_conns":      25,
	"database.max_idle_conns":      5,
	"database.conn_max_lifetime":   5 * time.Minute,
	"auth.jwt_secret":              "",
	"auth.token_lifetime_minutes":  60,
	"tasks.default_sort_field":     "created_at",
	"tasks.default_sort_direction": "desc",
	"tasks.default_page_limit":     10,
}

// Load reads configuration from an optional config.yaml in the working
// directory and from TASKS_ environment variables. Environment variables take
// precedence over the file, which takes precedence over defaults.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given config file instead of
// searching the working directory. An empty path falls back to the search.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
