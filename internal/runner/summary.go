package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/rootsploit/autoscope/internal/pipeline"
)

// stateIcon returns the marker shown next to each module in the summary.
func stateIcon(s pipeline.State) string {
	switch s {
	case pipeline.StateSuccess:
		return "✓"
	case pipeline.StateResumed:
		return "↺"
	case pipeline.StateToolMissing, pipeline.StateDependencyMissing:
		return "⏹"
	case pipeline.StateFailure:
		return "✗"
	}
	return "○"
}

// PrintSummary writes a per-module table of the run.
func PrintSummary(w io.Writer, outcomes []pipeline.Outcome) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "═══════════════════════════════════════════════════════")
	cyan.Fprintln(w, "                    SCAN SUMMARY")
	cyan.Fprintln(w, "═══════════════════════════════════════════════════════")

	var ok, skipped, failed int
	for _, o := range outcomes {
		line := fmt.Sprintf("  %s %-16s %-30s %-20s", stateIcon(o.State), o.Name, pipeline.PhaseName[o.Kind], o.State)
		switch o.State {
		case pipeline.StateSuccess, pipeline.StateResumed:
			ok++
			green.Fprint(w, line)
		case pipeline.StateFailure:
			failed++
			red.Fprint(w, line)
		default:
			skipped++
			yellow.Fprint(w, line)
		}

		if o.Duration > 0 {
			dim.Fprintf(w, " %8s", o.Duration.Round(time.Millisecond))
		}
		if o.Err != nil {
			dim.Fprintf(w, "  (%s)", firstLine(o.Err.Error()))
		}
		fmt.Fprintln(w)
		for _, warn := range o.Warnings {
			yellow.Fprintf(w, "      ⚠ %s\n", warn)
		}
	}

	fmt.Fprintln(w, "───────────────────────────────────────────────────────")
	fmt.Fprintf(w, "  Succeeded: %d  Skipped: %d  Failed: %d\n", ok, skipped, failed)
	cyan.Fprintln(w, "═══════════════════════════════════════════════════════")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
