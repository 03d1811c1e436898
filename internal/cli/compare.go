package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/driver"
	"github.com/me/schedsim/internal/metrics"
	"github.com/me/schedsim/internal/workload"
)

func newCompareCmd() *cobra.Command {
	var schedulerKeys []string
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "compare <workload.yaml>",
		Short: "Run a workload under several schedulers and compare the aggregates",
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

			keys := schedulerKeys
			if len(keys) == 0 {
				keys = registry.Keys()
			}

			var rows []metrics.ComparisonRow
			for _, key := range keys {
				sched, err := registry.Get(key)
				if err != nil {
					return err
				}
				drv := driver.New(wl, sched, driver.Config{MaxTicks: maxTicks}, logger)
				m, err := drv.Run(cmd.Context())
				if err != nil {
					return fmt.Errorf("scheduler %s: %w", key, err)
				}
				rows = append(rows, metrics.ComparisonRow{Scheduler: sched.Name(), Metrics: m})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workload: %s (%d processes, %d resources)\n\n",
				wl.Name, len(wl.Processes), wl.Resources)
			metrics.WriteComparison(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&schedulerKeys, "schedulers", "s", nil,
		"Scheduler keys to compare (default: all, e.g. -s fifo,srtf,rr)")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", driver.DefaultConfig().MaxTicks, "Tick budget per scheduler")

	return cmd
}
