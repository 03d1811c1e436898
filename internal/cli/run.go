package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/driver"
	"github.com/me/schedsim/internal/metrics"
	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

func newRunCmd() *cobra.Command {
	var schedulerKey string
	var showTrace bool
	var persist bool
	var dbPath string
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "run <workload.yaml>",
		Short: "Run a workload under one scheduler and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read workload: %w", err)
			}
			wl, err := workload.Parse(data)
			if err != nil {
				return err
			}

			sched, err := registry.Get(schedulerKey)
			if err != nil {
				return err
			}

			drv := driver.New(wl, sched, driver.Config{MaxTicks: maxTicks}, logger)
			m, err := drv.Run(cmd.Context())
			if err != nil {
				return err
			}

			metrics.WriteRun(cmd.OutOrStdout(), sched.Name(), m)

			if showTrace {
				fmt.Fprintln(cmd.OutOrStdout())
				for _, ev := range drv.Trace() {
					fmt.Fprintf(cmd.OutOrStdout(), "%5d  %-8s P%-3d", ev.Tick, ev.Kind, ev.PID)
					switch ev.Kind {
					case model.EventAcquire, model.EventRelease, model.EventBlock, model.EventWake:
						fmt.Fprintf(cmd.OutOrStdout(), "  R%d", ev.Resource)
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}

			if persist {
				if err := saveRun(cmd.Context(), dbPath, schedulerKey, string(data), m, drv.Trace()); err != nil {
					return fmt.Errorf("persist run: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schedulerKey, "scheduler", "s", "fifo", "Scheduler key (see 'schedsim schedulers')")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print the event trace after the report")
	cmd.Flags().BoolVar(&persist, "save", false, "Persist the run and trace to the database")
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Run database path (or SCHEDSIM_DB env)")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", driver.DefaultConfig().MaxTicks, "Tick budget before the run is aborted")

	return cmd
}

// saveRun stores a completed local run the same way the server does.
func saveRun(ctx context.Context, dbPath, schedulerKey, workloadDoc string, m *model.RunMetrics, trace []model.TraceEvent) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	now := time.Now().UTC()
	run := &model.Run{
		ID:          "run_" + uuid.New().String(),
		Scheduler:   schedulerKey,
		Workload:    workloadDoc,
		State:       model.RunStateCompleted,
		Metrics:     m,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := st.CreateRun(ctx, run); err != nil {
		return err
	}
	if err := st.AppendTrace(ctx, run.ID, trace); err != nil {
		return err
	}
	logger.Info("run saved", "run_id", run.ID, "db", dbPath)
	return nil
}
