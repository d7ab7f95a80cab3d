package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// newRootCmd builds the tasks-api command tree.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tasks-api",
		Short:         "Multi-user task tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a config file (default: ./config.yaml when present)")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newUsersCmd(&configPath),
		newTokenCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, *configPath, func(ctx context.Context, app *application) error {
				return app.Run(ctx)
			})
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(postgres.MigrationCommands, "|") + "]",
		Short:     "Apply or inspect the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}

			db, err := setupAppDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], log)
		},
	}
}

func newUsersCmd(configPath *string) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage task owners",
	}

	var email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a user and print its ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := domain.NewUser(email)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), *configPath, func(ctx context.Context, app *application) error {
				if err := app.userStore.Create(ctx, user); err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}
				app.logger.Info("user created", slog.String("user_id", user.ID.String()))
				_, err := fmt.Fprintln(cmd.OutOrStdout(), user.ID.String())
				return err
			})
		},
	}
	create.Flags().StringVar(&email, "email", "", "email address of the new user")
	_ = create.MarkFlagRequired("email")

	users.AddCommand(create)
	return users
}

func newTokenCmd(configPath *string) *cobra.Command {
	var rawUserID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(rawUserID)
			if err != nil {
				return fmt.Errorf("invalid user ID %q: %w", rawUserID, err)
			}

			return withApp(cmd.Context(), *configPath, func(ctx context.Context, app *application) error {
				if _, err := app.userStore.GetByID(ctx, userID); err != nil {
					return fmt.Errorf("failed to load user: %w", err)
				}
				token, err := app.jwtService.GenerateToken(ctx, userID)
				if err != nil {
					return fmt.Errorf("failed to generate token: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&rawUserID, "user-id", "", "ID of the user the token is issued for")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

// bootstrap loads configuration and installs the application logger.
func bootstrap(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := setupAppLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withApp builds the full application, runs fn and releases every resource
// afterwards.
func withApp(ctx context.Context, configPath string, fn func(context.Context, *application) error) error {
	cfg, log, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return fn(ctx, app)
}
