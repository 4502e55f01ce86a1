package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "HTTP request broadcasting proxy",
	Long: `Switchboard matches inbound HTTP requests against a declared route
table and fans each one out to a primary target (awaited) plus any
number of secondary targets (best-effort).`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(healthCmd)
}
