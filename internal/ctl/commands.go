package ctl

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server"
	"github.com/dmitrijs2005/bookledger/internal/shared"
	"github.com/spf13/cobra"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withServices(cmd.Context(), func(*server.Services) error {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newCreateAdminCommand(rt *runtime) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the admin account unless the email is taken",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = rt.cfg.AdminEmail
			}
			if name == "" {
				name = rt.cfg.AdminName
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
				pw, err := readPassword(stdinFd())
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(string(pw))
				shared.WipeByteArray(pw)
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			return rt.withServices(cmd.Context(), func(svc *server.Services) error {
				created, err := svc.Identity.EnsureAdmin(cmd.Context(), name, email, password)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", email)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists\n", email)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "admin display name (default from config)")
	cmd.Flags().StringVar(&email, "email", "", "admin email (default from config)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when empty)")
	return cmd
}

func newReconcileCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Compare availability counters with the ledger and report drift",
		Long: "Recomputes every book's expected availability from its active loans.\n" +
			"Drift is printed, published to the report sink and returned as a non-zero exit. Nothing is corrected.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withServices(cmd.Context(), func(svc *server.Services) error {
				report, err := svc.Reconciler.Reconcile(cmd.Context())
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				return report.Err()
			})
		},
	}
}

func newStatsCommand(rt *runtime) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print circulation statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				now = t
			}

			return rt.withServices(cmd.Context(), func(svc *server.Services) error {
				stats, err := svc.Stats.StatsAt(cmd.Context(), now)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), stats)
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate overdue loans at this RFC3339 time instead of now")
	return cmd
}
