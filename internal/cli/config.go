package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rootsploit/autoscope/internal/config"
)

func newConfigCmd() *cobra.Command {
	var path string

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage the AutoScope configuration file (~/.autoscope/config.yaml).

Keys:
  wordlist      wordlist used by directory bruteforce
  timeout       per-command timeout in seconds
  fast_timeout  per-command timeout under --fast, in seconds

Every key can be overridden with an AUTOSCOPE_<KEY> environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	configCmd.PersistentFlags().StringVar(&path, "path", "", "Config file path (default: ~/.autoscope/config.yaml)")

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create template config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path
			if target == "" {
				target = config.DefaultPath()
			}
			if err := config.WriteTemplate(target, force); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprint(cmd.OutOrStdout(), "[SUCCESS]")
			fmt.Fprintf(cmd.OutOrStdout(), " Config written to %s\n", target)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(fs)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
