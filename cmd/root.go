package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"yt-latest/infrastructure/configuration"
	"yt-latest/infrastructure/logger"
)

var rootCmd = &cobra.Command{
	Use:   "yt-latest",
	Short: "Find the latest YouTube upload whose title matches a pattern",
	Long: `yt-latest scans a channel's uploads newest-first and returns the first video
whose title matches a pattern, rendered as an embeddable iframe or JSON.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// env files never override the process environment
		configuration.LoadEnvFromFile("config.env", ".env")
		configuration.Load()
		logger.Configure(configuration.C.Logger.Format, configuration.C.Logger.Level)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
