package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/court-booking/internal/auth"
	"github.com/example/court-booking/internal/config"
	"github.com/example/court-booking/internal/db"
	"github.com/example/court-booking/internal/domain/user"
	"github.com/example/court-booking/internal/infrastructure/postgres"
	"github.com/example/court-booking/internal/logging"
	"github.com/example/court-booking/internal/migrate"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts (postgres backend)",
	}
	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserListCmd())
	return cmd
}

func openUsers(ctx context.Context) (*postgres.UserRepo, func(), error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Backend != config.BackendPostgres {
		return nil, nil, fmt.Errorf("accounts are stored in postgres; BOOKING_BACKEND is %q", cfg.Backend)
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d, logging.New(cfg.LogLevel, cfg.LogPretty)); err != nil {
		d.Close()
		return nil, nil, err
	}
	return postgres.NewUserRepo(d), d.Close, nil
}

func newUserAddCmd() *cobra.Command {
	var username, password, role string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add an account (username/password/role)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := user.ParseRole(role)
			if err != nil {
				return err
			}
			ctx := context.Background()
			users, closeDB, err := openUsers(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			if _, err := users.Create(ctx, username, []byte(hash), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q\n", r, username)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&role, "role", string(user.RoleUser), "user or admin")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			users, closeDB, err := openUsers(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			us, err := users.List(ctx)
			if err != nil {
				return err
			}
			for _, u := range us {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-6s %s\n", u.Username, u.Role, u.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}
