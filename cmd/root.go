package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/config"
	"github.com/scoutline/scout-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Incremental nanny candidate discovery and scoring",
	Long:  "Walks the listing site for recently active candidates, scores them against a job description with Claude and reconciles them into a table people can edit.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real env vars win either way.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openTable opens and migrates the configured candidate table.
func openTable(cmd *cobra.Command) (store.Table, error) {
	tbl, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := tbl.Migrate(cmd.Context()); err != nil {
		tbl.Close() //nolint:errcheck
		return nil, err
	}
	return tbl, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
