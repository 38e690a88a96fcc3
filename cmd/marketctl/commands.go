package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/database"
	"github.com/iliyamo/marketplace-api/internal/logging"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

// env bundles what every subcommand needs.
type env struct {
	cfg    config.Config
	db     *sql.DB
	logger *slog.Logger
}

func open() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &env{cfg: cfg, db: db, logger: logging.New(os.Stderr, cfg.Env, cfg.LogLevel)}, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.db.Close()

			if err := database.Migrate(cmd.Context(), e.db); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			e.logger.Info("schema applied", "database", e.cfg.DBName)
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: `Create an admin account.  Registration through the API only
creates buyers and sellers, so this is the way to bootstrap an admin.

Examples:
  marketctl create-admin --email ops@example.com --password 'long-secret'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 || len(password) > 72 {
				return errors.New("password must be 8 to 72 characters")
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer e.db.Close()

			id, err := repository.NewUserRepo(e.db).Create(cmd.Context(), name, email, password, model.RoleAdmin, e.cfg.BcryptCost)
			if errors.Is(err, repository.ErrEmailExists) {
				return fmt.Errorf("an account with email %s already exists", repository.NormalizeEmail(email))
			}
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func resetTokenCmd() *cobra.Command {
	var email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "reset-token",
		Short: "Issue a password reset token for an account",
		Long: `Issue a password reset token and print it.  Support staff use this
when the reset email cannot be delivered.  Any earlier token of the account
stops working.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.db.Close()
			if ttl <= 0 {
				ttl = e.cfg.ResetTokenTTL
			}
			raw, expires, err := issueResetToken(cmd.Context(), repository.NewUserRepo(e.db), email, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\nexpires: %s\n", raw, expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to RESET_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

type resetTokenStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	SetResetToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
}

// issueResetToken stores the hash of a fresh token for the account behind
// email and returns the raw token.
func issueResetToken(ctx context.Context, users resetTokenStore, email string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	u, err := users.GetByEmail(ctx, repository.NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", time.Time{}, fmt.Errorf("no account with email %s", repository.NormalizeEmail(email))
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("load user: %w", err)
	}
	raw, err := utils.NewResetToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expires := now.UTC().Add(ttl)
	if err := users.SetResetToken(ctx, u.ID, utils.HashToken(raw), expires); err != nil {
		return "", time.Time{}, fmt.Errorf("store reset token: %w", err)
	}
	return raw, expires, nil
}
