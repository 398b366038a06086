package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past discovery runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		tbl, err := openTable(cmd)
		if err != nil {
			return err
		}
		defer tbl.Close() //nolint:errcheck

		runs, err := tbl.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tQUERY\tCUTOFF\tPAGES\tSCANNED\tINSERTED\tUPDATED\tTOOK")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%dh\t%d\t%d\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.Query,
				r.CutoffHours,
				r.PagesScanned,
				r.CandidatesScanned,
				r.Inserted,
				r.Updated,
				r.Duration.Round(time.Second),
			)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}
