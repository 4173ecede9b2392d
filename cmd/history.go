package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruuvi/oaskit/internal/history"
)

var (
	historyDB    string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived coverage runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		runs, err := store.Runs(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(cmd.OutOrStdout(),
				"%s  %s  documented=%d passing=%d failing=%d untested=%d extra=%d endpoints=%d\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID,
				r.Summary.Documented, r.Summary.Passing, r.Summary.Failing,
				r.Summary.Untested, r.Summary.Extra, r.Endpoints)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyDB, "db", "runs.db", "Path to SQLite run history database")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Show at most N runs (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
