package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// newUserCmd groups account administration that is deliberately not
// exposed over HTTP.
func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List active accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd.Context(), a, func(ctx context.Context, database *sql.DB) error {
					users, err := store.ListUsers(ctx, database)
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE")
					for _, u := range users {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role)
					}
					return tw.Flush()
				})
			},
		},
		roleCmd(a, "promote", "Give an account the admin role", model.RoleAdmin),
		roleCmd(a, "demote", "Take the admin role away from an account", model.RoleUser),
		&cobra.Command{
			Use:   "disable <email>",
			Short: "Disable an account; its reports and claims are kept",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd.Context(), a, func(ctx context.Context, database *sql.DB) error {
					u, err := lookupUser(ctx, database, args[0])
					if err != nil {
						return err
					}
					if err := store.DeleteUser(ctx, database, u.ID); err != nil {
						return err
					}
					slog.Info("user disabled", "user", u.ID, "email", u.Email)
					fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s\n", u.Email)
					return nil
				})
			},
		},
	)
	return cmd
}

func roleCmd(a *app, use, short string, role model.Role) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), a, func(ctx context.Context, database *sql.DB) error {
				u, err := lookupUser(ctx, database, args[0])
				if err != nil {
					return err
				}
				if err := store.UpdateUserRole(ctx, database, u.ID, role); err != nil {
					return err
				}
				slog.Info("user role changed", "user", u.ID, "email", u.Email, "role", role)
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, role)
				return nil
			})
		},
	}
}

func lookupUser(ctx context.Context, database *sql.DB, email string) (*model.User, error) {
	u, err := store.GetUserByEmail(ctx, database, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("no active account with email %s", email)
	}
	return u, nil
}

// withDB opens the configured database for the duration of fn.
func withDB(ctx context.Context, a *app, fn func(context.Context, *sql.DB) error) error {
	if _, err := os.Stat(a.cfg.DBPath); err != nil {
		return fmt.Errorf("database %s not found, run najdeno init first", a.cfg.DBPath)
	}

	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return err
	}
	return fn(ctx, database)
}
