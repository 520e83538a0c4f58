package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/report"
	"github.com/rootsploit/autoscope/internal/storage"
)

func newReportCmd() *cobra.Command {
	var format, target string

	cmd := &cobra.Command{
		Use:   "report [target-directory]",
		Short: "Regenerate the report from existing scan results",
		Long: `Regenerate the report from the module outputs in a target directory.

Examples:
  autoscope report ./output/example_com
  autoscope report ./output/example_com --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args[0], target, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", config.DefaultReport, "Report format ("+strings.Join(config.ReportFormats, ", ")+")")
	cmd.Flags().StringVar(&target, "target", "", "Target name shown in the report (default: directory name)")
	return cmd
}

func runReport(cmd *cobra.Command, dir, target, format string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err := config.ValidateReportFormat(format); err != nil {
		return err
	}
	if target == "" {
		target = filepath.Base(filepath.Clean(dir))
	}

	path, err := report.Generate(cmd.Context(), storage.NewLocalStorage(dir), target, format)
	if err != nil {
		return err
	}
	color.New(color.FgGreen, color.Bold).Fprint(cmd.OutOrStdout(), "[INFO]")
	fmt.Fprintf(cmd.OutOrStdout(), " Report generated: %s\n", path)
	return nil
}
