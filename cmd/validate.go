package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruuvi/oaskit/internal/oas"
)

var validateCmd = &cobra.Command{
	Use:   "validate [spec.yaml]",
	Short: "Validate an OpenAPI document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := oas.LoadAndValidate(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
