package main

import (
	"fmt"
	"os"

	"github.com/anonto42/twittor/backend/pkg/config"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	output string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "twittorctl",
	Short: "twittorctl - administer a Twittor deployment",
	Long: `twittorctl runs maintenance tasks against the Twittor databases:
schema migrations, manual account activation, fake data seeding and
inspection of the email delivery log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		logger.Initialize(cfg.LogLevel, "")
		if output != "text" && output != "json" {
			return fmt.Errorf("unknown output format %q", output)
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(deliveriesCmd)
}

func main() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
