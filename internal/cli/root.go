package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/sim"
	"github.com/me/schedsim/internal/store"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger   *slog.Logger
	registry *sim.Registry
)

// defaultDBPath returns the run database location, checking SCHEDSIM_DB first.
func defaultDBPath() string {
	if p := os.Getenv("SCHEDSIM_DB"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "schedsim.db"
	}
	return filepath.Join(home, ".schedsim", "schedsim.db")
}

// openStore opens the SQLite run database at dbPath, creating parent
// directories and running migrations.
func openStore(dbPath string) (store.Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, err
		}
	}
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(context.Background()); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// NewRootCmd creates the root cobra command for the schedsim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedsim",
		Short: "schedsim — discrete-event CPU scheduling simulator",
		Long: `schedsim runs workloads of competing processes under pluggable scheduling
policies (FIFO, SJF, SRTF, round-robin, priority with aging) and resource
arbitration protocols (FCFS, priority ceiling, priority inheritance), and
reports per-process and per-run metrics.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(flagLogLevel, flagLogFormat)
			registry = sim.DefaultRegistry()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		newSchedulersCmd(),
		newListCmd(),
		newShowCmd(),
		newPlayCmd(),
		newServeCmd(),
	)

	return root
}
