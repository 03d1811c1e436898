package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/metrics"
	"github.com/me/schedsim/pkg/model"
)

func newShowCmd() *cobra.Command {
	var dbPath string
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a persisted run's report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run:       %s\n", run.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "State:     %s\n", run.State)
			fmt.Fprintf(cmd.OutOrStdout(), "Created:   %s\n", run.CreatedAt)
			if run.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Error:     %s\n", run.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout())

			if run.Metrics != nil {
				metrics.WriteRun(cmd.OutOrStdout(), run.Scheduler, run.Metrics)
			}

			if showTrace {
				events, _, err := st.ListTrace(cmd.Context(), run.ID, model.ListOptions{Limit: 100})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
				for _, ev := range events {
					fmt.Fprintf(cmd.OutOrStdout(), "%5d  %-8s P%d\n", ev.Tick, ev.Kind, ev.PID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Run database path (or SCHEDSIM_DB env)")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print the first page of the trace")

	return cmd
}
