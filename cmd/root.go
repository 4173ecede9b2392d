package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "oaskit",
	Short: "Tools for the Ruuvi cloud OpenAPI document",
	Long: `oaskit bundles, downgrades, validates and queries the Ruuvi cloud
OpenAPI document, and joins Schemathesis fuzz-run artifacts into
per-endpoint coverage reports.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
