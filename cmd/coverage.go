package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ruuvi/oaskit/internal/coverage"
	"github.com/ruuvi/oaskit/internal/history"
	"github.com/ruuvi/oaskit/internal/oas"
)

var (
	coverageOpenAPI string
	coverageHAR     string
	coverageJUnit   string
	coverageOut     string
	coverageHistory string
	coverageIgnore  []string
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Join fuzz-run artifacts into a per-endpoint coverage report",
	Long: `Coverage joins three inputs: the documented response statuses from an
OpenAPI document, the statuses actually seen in a Schemathesis HAR
capture, and the failing test case IDs from the matching JUnit report.
Each documented endpoint is classified green, yellow, red or grey.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := oas.Load(coverageOpenAPI)
		if err != nil {
			return err
		}
		seen, cases, err := coverage.LoadHAR(coverageHAR)
		if err != nil {
			return err
		}
		failingIDs, err := coverage.LoadFailingCaseIDs(coverageJUnit)
		if err != nil {
			return err
		}

		patterns := coverageIgnore
		if len(patterns) == 0 {
			patterns = coverage.DefaultIgnorePatterns
		}
		rep := coverage.Build(coverage.Inputs{
			Documented: oas.DocumentedStatuses(doc),
			Seen:       seen,
			Cases:      cases,
			FailingIDs: failingIDs,
			Ignore:     coverage.NewIgnore(patterns),
		})

		if err := coverage.WriteText(cmd.OutOrStdout(), rep); err != nil {
			return err
		}

		if coverageOut != "" {
			f, err := os.Create(coverageOut)
			if err != nil {
				return err
			}
			if err := coverage.WriteHTML(f, rep); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", coverageOut)
		}

		if coverageHistory != "" {
			store, err := history.Open(coverageHistory)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			id, err := store.RecordRun(rep, history.RunInputs{
				OpenAPI: coverageOpenAPI,
				HAR:     coverageHAR,
				JUnit:   coverageJUnit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded run %s in %s\n", id, coverageHistory)
		}
		return nil
	},
}

func init() {
	coverageCmd.Flags().StringVar(&coverageOpenAPI, "openapi", "", "Path to bundled OpenAPI YAML")
	coverageCmd.Flags().StringVar(&coverageHAR, "har", "", "Path to Schemathesis HAR JSON")
	coverageCmd.Flags().StringVar(&coverageJUnit, "junit", "", "Path to Schemathesis JUnit XML")
	coverageCmd.Flags().StringVar(&coverageOut, "out", "", "Path to write HTML coverage report")
	coverageCmd.Flags().StringVar(&coverageHistory, "history", "", "Path to SQLite run history database")
	coverageCmd.Flags().StringArrayVar(&coverageIgnore, "ignore-status", nil,
		"Status codes or patterns to ignore for coverage, e.g. 429 or 5XX (default \"429 5XX\")")
	_ = coverageCmd.MarkFlagRequired("openapi")
	_ = coverageCmd.MarkFlagRequired("har")
	_ = coverageCmd.MarkFlagRequired("junit")
	rootCmd.AddCommand(coverageCmd)
}
