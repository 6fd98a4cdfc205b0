// Package cmd wires the command-line surface: subcommand parsing, flags and
// exit codes. All actual work happens in the internal packages.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wwdcgrab/wwdcgrab/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "wwdcgrab",
	Short:        "Fetch videos, transcripts and code samples from WWDC session pages",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init()
		if verbose {
			config.SetLogLevel(zerolog.DebugLevel)
		}
	},
}

// Execute runs the root command, exiting non-zero on any unrecoverable error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging output")
}
