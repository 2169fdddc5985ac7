package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "parlorctl",
	Short: "Parlor CLI tool",
	Long: `Parlorctl is a command-line companion for a running Parlor server.

Available commands:
  token      Mint a session token for a user
  history    Fetch recent messages from the server
  presence   Show who is currently online

Use "parlorctl [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("PARLOR_URL", "http://localhost:8080"),
		"Base URL of the Parlor server")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
