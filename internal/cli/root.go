package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/runner"
	"github.com/rootsploit/autoscope/internal/version"
)

// NewRootCmd builds the autoscope command tree with fresh flag state.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "autoscope",
		Short: "Modular recon pipeline orchestrator",
		Long: `AutoScope - modular reconnaissance framework.

Runs subfinder, naabu, httpx, curl, ffuf, arjun and gowitness in a fixed order
against one target, writing every result under <output>/<target>/ and a
summary report at the end.

Examples:
  autoscope -t example.com
  autoscope -t example.com --fast --no-screenshots
  autoscope -t example.com --deep --report json
  autoscope -t example.com --resume`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, cfg)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&cfg.Target, "target", "t", "", "Target domain or IP")
	f.StringVarP(&cfg.OutputDir, "output", "o", config.DefaultOutputDir, "Output directory")

	// Scan profile
	f.BoolVar(&cfg.Fast, "fast", false, "Fast scan profile (top 1000 ports, short timeouts)")
	f.BoolVar(&cfg.Deep, "deep", false, "Deep scan profile (all subfinder sources, all ports)")

	// Module selection
	f.BoolVar(&cfg.OnlySubdomains, "only-subdomains", false, "Run only subdomain enumeration")
	f.BoolVar(&cfg.NoDirs, "no-dirs", false, "Skip directory bruteforce")
	f.BoolVar(&cfg.NoScreenshots, "no-screenshots", false, "Skip screenshots")
	f.BoolVar(&cfg.Resume, "resume", false, "Reuse outputs of modules that succeeded in an earlier run")

	f.StringVar(&cfg.ReportFormat, "report", config.DefaultReport, "Report format ("+strings.Join(config.ReportFormats, ", ")+")")
	f.StringVar(&cfg.WordlistFile, "wordlist", "", "Wordlist for directory bruteforce (default: ~/.autoscope/wordlists/common.txt)")
	f.StringVar(&cfg.ConfigFile, "config", "", "Config file (default: ~/.autoscope/config.yaml)")
	f.BoolVar(&cfg.Debug, "debug", false, "Show detailed timing logs for each tool execution")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func runScan(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	printBanner(out)

	// option conflicts stop the run before the working directory is touched
	if err := cfg.Validate(); err != nil {
		return err
	}

	fs, err := config.LoadFile(cfg.ConfigFile)
	if err != nil {
		return err
	}
	cfg.Apply(fs)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, err = runner.New(cfg, console.New(out)).Run(ctx)
	return err
}

func printBanner(w io.Writer) {
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	red.Fprint(w, `
    ___         __        _____
   /   | __  __/ /_____  / ___/_________  ____  ___
  / /| |/ / / / __/ __ \ \__ \/ ___/ __ \/ __ \/ _ \
 / ___ / /_/ / /_/ /_/ /___/ / /__/ /_/ / /_/ /  __/
/_/  |_\__,_/\__/\____//____/\___/\____/ .___/\___/
                                      /_/
`)
	fmt.Fprintln(w)
	cyan.Fprint(w, "  Modular Recon Framework")
	gray.Fprintf(w, "  v%s\n", version.Version)
	fmt.Fprintln(w)
}
