package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/plantrec/internal/cli"
	"github.com/cloo-solutions/plantrec/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plantrecd",
		Short: "Plant recommendation daemon and admin CLI",
		Long:  "plantrecd runs the recommendation API server and manages the plant catalog and request log",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.CatalogCmd())
	rootCmd.AddCommand(admin.RequestsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
