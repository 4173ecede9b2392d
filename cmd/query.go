package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ruuvi/oaskit/internal/doctree"
	"github.com/ruuvi/oaskit/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query [spec.yaml] [jsonpath]",
	Short: "Evaluate a JSONPath expression against a YAML document",
	Long: `Query decodes the document and prints every JSONPath match as a YAML
document, separated by ---. Example:

  oaskit query openapi.yaml '$.paths.*.get.summary'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := doctree.LoadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := doctree.Decode(root)
		if err != nil {
			return err
		}
		matches, err := query.Eval(doc, args[1])
		if err != nil {
			return err
		}
		for i, m := range matches {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "---")
			}
			out, err := yaml.Marshal(m)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
