package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rootsploit/autoscope/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	var scanID string

	cmd := &cobra.Command{
		Use:   "history [target-directory]",
		Short: "Show past scans of a target",
		Long: `List the scans recorded in a target directory, or the module
outcomes of one scan with --scan.

Examples:
  autoscope history ./output/example_com
  autoscope history ./output/example_com --scan 1a2b3c4d`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args[0], scanID, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of scans to list")
	cmd.Flags().StringVar(&scanID, "scan", "", "Show module outcomes for this scan ID")
	return cmd
}

func runHistory(cmd *cobra.Command, dir, scanID string, limit int) error {
	if _, err := os.Stat(filepath.Join(dir, storage.DBFile)); err != nil {
		return fmt.Errorf("no scan history in %s", dir)
	}
	hist, err := storage.OpenHistory(dir)
	if err != nil {
		return err
	}
	defer hist.Close()

	w := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	if scanID != "" {
		runs, err := hist.ModuleRuns(cmd.Context(), scanID)
		if err != nil {
			return fmt.Errorf("failed to load scan %s: %w", scanID, err)
		}
		if len(runs) == 0 {
			return fmt.Errorf("scan not found: %s", scanID)
		}
		cyan.Fprintf(w, "\n[+] Scan %s\n\n", scanID)
		for _, r := range runs {
			fmt.Fprintf(w, "  %-16s %-20s %8dms", r.Module, r.Status, r.DurationMs)
			if r.Error != "" {
				gray.Fprintf(w, "  %s", r.Error)
			} else if r.Artifact != "" {
				gray.Fprintf(w, "  %s", r.Artifact)
			}
			fmt.Fprintln(w)
		}
		return nil
	}

	scans, err := hist.ListScans(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list scans: %w", err)
	}
	cyan.Fprintf(w, "\n[+] Scans in %s\n\n", dir)
	fmt.Fprintf(w, "  %-10s %-20s %-8s %-12s %-20s %s\n", "ID", "STARTED", "PROFILE", "STATUS", "TARGET", "DURATION")
	for _, s := range scans {
		fmt.Fprintf(w, "  %-10s %-20s %-8s %-12s %-20s %s\n",
			s.ID, s.StartTime.Local().Format("2006-01-02 15:04:05"), s.Profile, s.Status, s.Target, s.Duration)
	}
	fmt.Fprintln(w)
	return nil
}
