package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contracthub/contracthub/internal/app"
	"github.com/contracthub/contracthub/internal/platform/db"
	"github.com/contracthub/contracthub/internal/platform/validate"
	"github.com/contracthub/contracthub/internal/users"
)

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff accounts",
	}
	usersCmd.AddCommand(newUsersCreateCmd())
	return usersCmd
}

func newUsersCreateCmd() *cobra.Command {
	var req users.CreateUserRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account, typically the first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(req); err != nil {
				return fmt.Errorf("invalid user: %w", err)
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			u, err := users.NewService(users.NewRepository(pool), nil, logger).Create(ctx, req)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&req.Email, "email", "", "login email")
	create.Flags().StringVar(&req.Name, "name", "", "display name")
	create.Flags().StringVar(&req.Role, "role", "admin", "staff role")
	create.Flags().StringVar(&req.Password, "password", "", "initial password (8-72 characters)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	return create
}
