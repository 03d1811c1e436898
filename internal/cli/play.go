package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/driver"
	"github.com/me/schedsim/internal/tui"
	"github.com/me/schedsim/internal/workload"
)

func newPlayCmd() *cobra.Command {
	var schedulerKey string
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "play <workload.yaml>",
		Short: "Run a workload and step through its trace interactively",
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
			if _, err := drv.Run(cmd.Context()); err != nil {
				return err
			}

			return tui.Run(tui.New(wl, sched.Name(), drv.Trace()))
		},
	}

	cmd.Flags().StringVarP(&schedulerKey, "scheduler", "s", "fifo", "Scheduler key (see 'schedsim schedulers')")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", driver.DefaultConfig().MaxTicks, "Tick budget before the run is aborted")

	return cmd
}
