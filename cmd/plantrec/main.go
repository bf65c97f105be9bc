package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/plantrec/internal/cli"
	"github.com/cloo-solutions/plantrec/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "plantrec",
		Short: "plantrec CLI - plant recommendations from the command line",
		Long: `plantrec asks a plantrecd server for ranked plant recommendations,
records feedback on them and browses the plant catalog.

Environment variables:
  PLANTREC_API_URL   API base URL (default: http://localhost:8080)
  PLANTREC_USER_ID   User id sent with every request`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	rootCmd.PersistentFlags().String("user", "", "User id (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ConfigureCmd())
	rootCmd.AddCommand(client.RecommendCmd())
	rootCmd.AddCommand(client.FeedbackCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.PlantsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
