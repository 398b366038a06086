package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutline/scout-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the candidate table to CSV or XLSX",
	Long:  "Snapshots the table, best score first. The output format follows the file extension.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := openTable(cmd)
		if err != nil {
			return err
		}
		defer tbl.Close() //nolint:errcheck

		rows, err := tbl.All(cmd.Context())
		if err != nil {
			return err
		}
		if err := export.Snapshot(rows, args[0]); err != nil {
			return err
		}

		fmt.Printf("Wrote %d candidates to %s\n", len(rows), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
