package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath string
)

var rootCmd = &cobra.Command{
	Use:   "fgt",
	Short: "Funnel Goat - simulate and analyze A/B funnel experiments",
	Long: `🐐 Funnel Goat simulates an A/B experiment over a synthetic user
population, stores the raw events in embedded SQLite, and analyzes them:
click-through significance, funnel drop-off, and revenue leakage.
Single Go binary, no external dependencies.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("FGT_DB_PATH", "./fgt.db"), "database path")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
