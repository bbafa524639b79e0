// Package ctl implements ledgerctl, the operator command line for the
// bookledger database: migrations, admin seeding, integrity checks and
// statistics.
package ctl

import (
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server"
	"github.com/dmitrijs2005/bookledger/internal/server/config"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type runtime struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewRootCommand builds ledgerctl over cfg. Persistent flags override the
// database settings and log level.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	rt := &runtime{cfg: cfg}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the bookledger database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			rt.logger = logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}

	root.PersistentFlags().StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "database driver (pgx or sqlite)")
	root.PersistentFlags().StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "database DSN")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	root.AddCommand(
		newMigrateCommand(rt),
		newCreateAdminCommand(rt),
		newReconcileCommand(rt),
		newStatsCommand(rt),
	)
	return root
}

// withServices opens the store, runs fn and closes the store.
func (rt *runtime) withServices(ctx context.Context, fn func(*server.Services) error) error {
	store, err := server.OpenStore(ctx, rt.cfg)
	if err != nil {
		return err
	}
	defer store.DB.Close()

	sink, err := server.NewSink(ctx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}

	return fn(server.NewServices(store, rt.cfg, sink, rt.logger))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs ledgerctl with the process arguments and environment.
func Execute(ctx context.Context) int {
	root := NewRootCommand(config.LoadEnvConfig())
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

func stdinFd() int { return int(os.Stdin.Fd()) }
