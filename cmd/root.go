package cmd

import (
	"github.com/maxkimambo/envup/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	verbose    bool
	jsonLogs   bool
	quiet      bool
	version    = "v0.1.0"

	rootCmd = &cobra.Command{
		Use:   "envup",
		Short: "Keep a development machine's toolchains and packages up to date",
		Long: `envup upgrades language runtimes, package managers and OS packages in one go.

Unprivileged updates run in parallel, respecting dependencies between them.
Updates that need sudo run afterwards, one at a time, so only one password
prompt is ever waiting on the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(verbose || debug, jsonLogs, quiet)
			if debug {
				logger.Op.Debug("Debug logging enabled")
			}
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default $XDG_CONFIG_HOME/envup/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(planCmd)
}
