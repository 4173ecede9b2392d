package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruuvi/oaskit/internal/doctree"
	"github.com/ruuvi/oaskit/internal/downgrade"
)

var downgradeCmd = &cobra.Command{
	Use:   "downgrade [input.yaml] [output.yaml]",
	Short: "Rewrite an OpenAPI 3.1 document into the 3.0 dialect",
	Long: `Downgrade reads an OpenAPI 3.1 YAML document and writes an equivalent
3.0 document: the version tag becomes 3.0.3, type arrays containing
"null" fold into nullable: true, and patternProperties is emulated with
an additionalProperties oneOf.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := args[1]

		root, err := doctree.LoadFile(input)
		if err != nil {
			return err
		}
		if err := doctree.WriteFile(output, downgrade.Apply(root)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downgradeCmd)
}
