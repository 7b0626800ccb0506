package main

import (
	"github.com/spf13/cobra"

	"modtrack/internal/version"
)

var (
	verbosity int
	quiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "modtrack",
	Short: "modtrack - module modularization tracker",
	Long: `modtrack discovers the modules of a repository, measures them with a set of
pluggable rules, records a history of aggregate metrics and exports a JSON report
and a self-contained HTML dashboard.

The repository root is the first argument, else $MODULE_TRACKER_ROOT (a .env file
in the working directory is honoured), else the working directory.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")
}
