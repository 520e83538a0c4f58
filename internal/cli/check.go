package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rootsploit/autoscope/internal/tools"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check installed tools",
		Long: `Check which reconnaissance tools are installed and available.

Modules whose tool is missing are skipped during a scan with install guidance.`,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintln(w, "\n[+] AutoScope Tool Status")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "─────────────────────────────────────────────────────")

	statuses := tools.NewChecker().CheckAll(cmd.Context(), tools.All())
	installed := 0
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-12s ", s.Tool.Name)
		if !s.Installed {
			red.Fprintln(w, "✗ not found")
			gray.Fprintf(w, "               %s\n", s.Tool.Guidance())
			continue
		}
		installed++
		green.Fprint(w, "✓ installed")
		if v := s.Semver(); v != nil {
			fmt.Fprintf(w, " (v%s)", v)
		} else if s.Version != "" {
			fmt.Fprintf(w, " (%s)", s.Version)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "─────────────────────────────────────────────────────")
	fmt.Fprintf(w, "  %d/%d tools installed\n\n", installed, len(statuses))
	return nil
}
