package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/pkg/model"
)

func newListCmd() *cobra.Command {
	var dbPath string
	var state string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := model.ListOptions{Limit: limit, Offset: offset, State: state}
			runs, total, err := st.ListRuns(cmd.Context(), opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSCHEDULER\tSTATE\tMAKESPAN\tCREATED")
			for _, run := range runs {
				makespan := "-"
				if run.Metrics != nil {
					makespan = fmt.Sprintf("%d", run.Metrics.Makespan)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					run.ID, run.Scheduler, run.State, makespan,
					run.CreatedAt.Local().Format(time.RFC3339))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d run(s)\n", len(runs), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Run database path (or SCHEDSIM_DB env)")
	cmd.Flags().StringVar(&state, "state", "", "Filter by state (PENDING, RUNNING, COMPLETED, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset into the result set")

	return cmd
}
