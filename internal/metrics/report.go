// Package metrics renders run metrics as human-readable reports: a
// per-process table for a single run and a comparison table across scheduler
// variants.
package metrics

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/me/schedsim/pkg/model"
)

// ComparisonRow pairs a scheduler's display name with its run metrics.
type ComparisonRow struct {
	Scheduler string
	Metrics   *model.RunMetrics
}

// WriteRun renders one run's per-process table followed by the aggregates.
func WriteRun(w io.Writer, scheduler string, m *model.RunMetrics) {
	fmt.Fprintf(w, "Scheduler: %s\n\n", scheduler)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tSTART\tCOMPLETION\tTURNAROUND\tWAITING\tRESPONSE")
	for _, p := range m.Processes {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\n",
			p.PID, p.Start, p.Completion, p.Turnaround, p.Waiting, p.Response)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nmakespan        %s ticks\n", humanize.Comma(int64(m.Makespan)))
	fmt.Fprintf(w, "idle            %s ticks\n", humanize.Comma(int64(m.IdleTicks)))
	fmt.Fprintf(w, "switches        %s\n", humanize.Comma(int64(m.Switches)))
	fmt.Fprintf(w, "avg turnaround  %s\n", humanize.CommafWithDigits(m.AvgTurnaround, 2))
	fmt.Fprintf(w, "avg waiting     %s\n", humanize.CommafWithDigits(m.AvgWaiting, 2))
	fmt.Fprintf(w, "avg response    %s\n", humanize.CommafWithDigits(m.AvgResponse, 2))
}

// WriteComparison renders one line of aggregates per scheduler so variants
// can be compared over the same workload.
func WriteComparison(w io.Writer, rows []ComparisonRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCHEDULER\tMAKESPAN\tIDLE\tSWITCHES\tAVG TURNAROUND\tAVG WAITING\tAVG RESPONSE")
	for _, row := range rows {
		m := row.Metrics
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			row.Scheduler,
			humanize.Comma(int64(m.Makespan)),
			m.IdleTicks,
			m.Switches,
			humanize.CommafWithDigits(m.AvgTurnaround, 2),
			humanize.CommafWithDigits(m.AvgWaiting, 2),
			humanize.CommafWithDigits(m.AvgResponse, 2),
		)
	}
	tw.Flush()
}
