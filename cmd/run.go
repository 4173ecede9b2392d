package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ruuvi/oaskit/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [config.hcl]",
	Short: "Run the documentation pipeline described by an HCL file",
	Long: `Run executes the configured stages in the fixed order bundle ->
downgrade -> validate -> coverage. Absent blocks are skipped; each stage
consumes the previous stage's output; the first failing stage aborts the
run. The config defaults to oaskit.hcl.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "oaskit.hcl"
		if len(args) == 1 {
			configPath = args[0]
		}
		cfg, err := pipeline.LoadConfig(configPath)
		if err != nil {
			return err
		}
		return pipeline.Run(cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
