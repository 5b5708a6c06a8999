package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/M4dhxv/Financial-Analysis/internal/config"
	"github.com/M4dhxv/Financial-Analysis/internal/logging"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	sheet      string
	thresholds string
	logLevel   string
	logFormat  string
}

// execute runs the CLI and returns the process exit code.
func execute(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "variance",
		Short:         "Period-over-period variance analysis",
		Long:          "Detects the schema of a tabular file, reshapes it into canonical records and explains how each metric moved between periods.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Excel sheet to read (default: first sheet)")
	rootCmd.PersistentFlags().StringVar(&opts.thresholds, "thresholds", "", "YAML file overriding detection thresholds")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newDetectCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (o *rootOptions) loadThresholds() (schema.Thresholds, error) {
	base := schema.DefaultThresholds()
	if o.thresholds == "" {
		return base, nil
	}
	return config.LoadThresholdsFile(o.thresholds, base)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "variance version %s (commit: %s)\n", version, commit)
			return err
		},
	}
}
