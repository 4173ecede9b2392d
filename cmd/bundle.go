package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/ruuvi/oaskit/internal/bundle"
	"github.com/ruuvi/oaskit/internal/doctree"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle [input.yaml] [output.yaml]",
	Short: "Inline external $refs into a single self-contained document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		output := args[1]

		root, err := bundle.New(osfs.New("/")).Bundle(input)
		if err != nil {
			return err
		}
		if err := doctree.WriteFile(output, root); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundleCmd)
}
