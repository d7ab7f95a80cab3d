package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/store"
)

// loadAppConfig loads the application configuration from the given file, or
// from ./config.yaml and environment variables when path is empty.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// queryDefaults converts the tasks section of the configuration into the
// list defaults the task service applies.
func queryDefaults(cfg config.TasksConfig) store.QueryDefaults {
	return store.QueryDefaults{
		SortField:     store.SortField(cfg.DefaultSortField),
		SortDirection: store.SortDirection(cfg.DefaultSortDirection),
		Limit:         cfg.DefaultPageLimit,
	}
}

// logConfig records the loaded configuration without secrets.
func logConfig(cfg *config.Config, log *slog.Logger) {
	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	log.Debug("Task list defaults",
		slog.String("sort_field", cfg.Tasks.DefaultSortField),
		slog.String("sort_direction", cfg.Tasks.DefaultSortDirection),
		slog.Int("page_limit", cfg.Tasks.DefaultPageLimit))

	if cfg.Database.URL != "" {
		log.Debug("Database configuration", slog.Bool("url_present", true))
	}
	if cfg.Auth.JWTSecret != "" {
		log.Debug("Auth configuration", slog.Bool("jwt_secret_present", true))
	}
}
