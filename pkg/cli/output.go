package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/poltergeist/mlfq/pkg/types"
)

func priorityColor(level string) string {
	switch level {
	case "HIGH":
		return color.GreenString(level)
	case "MEDIUM":
		return color.YellowString(level)
	case "LOW":
		return color.RedString(level)
	}
	return level
}

func statusColor(status types.RunStatus) string {
	switch status {
	case types.RunStatusCompleted:
		return color.GreenString(string(status))
	case types.RunStatusTimeout, types.RunStatusCancelled:
		return color.YellowString(string(status))
	}
	return color.RedString(string(status))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport renders the header, per-process results and per-job summary
// of a run.
func printReport(w io.Writer, r *types.RunReport) {
	fmt.Fprintf(w, "Run %s (%s)\n", r.RunID, r.Name)
	fmt.Fprintf(w, "  status: %s", statusColor(r.Status))
	if r.Error != "" {
		fmt.Fprintf(w, " (%s)", r.Error)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  policy: %s  cpus: %d  ticks: %d  boosts: %d  wall: %s\n\n",
		r.Policy, r.NCPU, r.Ticks, r.Boosts, r.Duration().Round(time.Millisecond))

	if len(r.Results) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PID\tJOB\tNAME\tEXIT\tPRIORITY\tCPU\tDISPATCH\tDEMOTE\tTURNAROUND\tRESPONSE\tWAIT")
		for _, res := range r.Results {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
				res.PID, res.Job, res.Name, res.ExitStatus, priorityColor(res.Priority),
				res.CPUTicks, res.Dispatches, res.Demotions, res.Turnaround, res.Response, res.Wait)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	printSummary(w, r.Summary)
}

func printSummary(w io.Writer, summary []types.JobSummary) {
	if len(summary) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tKIND\tPROCS\tAVG TURNAROUND\tAVG RESPONSE\tAVG WAIT\tCPU\tDEMOTE")
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%d\t%d\n",
			s.Job, s.Kind, s.Processes, s.AvgTurnaround, s.AvgResponse, s.AvgWait, s.CPUTicks, s.Demotions)
	}
	tw.Flush()
}

func printRunList(w io.Writer, reports []*types.RunReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tNAME\tSTATUS\tPOLICY\tTICKS\tPROCS\tSTARTED")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.RunID, r.Name, statusColor(r.Status), r.Policy, r.Ticks, len(r.Results),
			r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

func printJobs(w io.Writer, cfg *types.SimulationConfig) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tKIND\tCOUNT\tBURSTS\tBURST TICKS\tENABLED")
	for i := range cfg.Jobs {
		j := &cfg.Jobs[i]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%t\n",
			j.Name, j.Kind, j.GetCount(), j.GetBursts(), j.GetBurstTicks(), j.IsEnabled())
	}
	tw.Flush()
}
