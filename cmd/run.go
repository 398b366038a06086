package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/browser"
	"github.com/scoutline/scout-cli/internal/jobspec"
	"github.com/scoutline/scout-cli/internal/pipeline"
	"github.com/scoutline/scout-cli/internal/scoring"
	"github.com/scoutline/scout-cli/pkg/anthropic"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover and score recently active candidates",
	Long:  "Walks listing pages newest-first, opens unseen candidates inside the recency window, scores them and upserts everything into the table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		query, _ := cmd.Flags().GetString("query")
		cutoff, _ := cmd.Flags().GetInt("cutoff-hours")
		maxPages, _ := cmd.Flags().GetInt("max-pages")
		newOnly, _ := cmd.Flags().GetBool("new-only")
		noScore, _ := cmd.Flags().GetBool("no-score")

		if query == "" {
			query = cfg.Scan.Query
		}
		if cutoff == 0 {
			cutoff = cfg.Scan.CutoffHours
		}
		if maxPages == 0 {
			maxPages = cfg.Scan.MaxPages
		}

		tbl, err := openTable(cmd)
		if err != nil {
			return err
		}
		defer tbl.Close() //nolint:errcheck

		gateway, jd, err := buildScorer(noScore)
		if err != nil {
			return err
		}

		session, err := browser.NewSession(cfg.Browser, cfg.Site.BaseURL)
		if err != nil {
			return err
		}
		defer session.Close()

		if err := ensureLoggedIn(cmd, session); err != nil {
			return err
		}

		origin := ""
		if cfg.Commute.Enabled {
			origin = cfg.Commute.Origin
		}
		reader := browser.NewReader(session, origin)
		if err := reader.OpenSearch(ctx, query); err != nil {
			return err
		}

		runner := pipeline.NewRunner(reader, tbl, gateway, pipeline.Options{
			Query:          query,
			JobDescription: jd,
			CutoffHours:    cutoff,
			MaxPages:       maxPages,
			NewOnly:        newOnly,
		})

		record, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Pages: %d  Scanned: %d  Inserted: %d  Updated: %d  Took: %s\n",
			record.PagesScanned, record.CandidatesScanned,
			record.Inserted, record.Updated,
			record.Duration.Round(time.Second),
		)
		return nil
	},
}

// buildScorer assembles the scoring gateway from config. Scoring is
// skipped with a warning when disabled or unconfigured, never fatal.
func buildScorer(noScore bool) (*scoring.Gateway, string, error) {
	if noScore {
		return nil, "", nil
	}
	if cfg.Anthropic.Key == "" {
		zap.L().Warn("run: no Anthropic key configured, candidates will not be scored")
		return nil, "", nil
	}

	spec, err := jobspec.Load(cfg.Job.SpecPath)
	if err != nil {
		return nil, "", eris.Wrap(err, "run: job spec required for scoring")
	}

	gateway := scoring.NewGateway(anthropic.NewClient(cfg.Anthropic.Key), scoring.GatewayConfig{
		Model:     cfg.Anthropic.Model,
		MaxTokens: int64(cfg.Anthropic.MaxTokens),
		Timeout:   time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
	})
	return gateway, spec.Render(), nil
}

// ensureLoggedIn reuses the saved session or signs in with configured
// credentials.
func ensureLoggedIn(cmd *cobra.Command, session *browser.Session) error {
	ok, err := session.LoggedIn(cmd.Context())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if cfg.Site.Login == "" || cfg.Site.Password == "" {
		return eris.New("run: not logged in and no credentials configured, run 'scout login' first")
	}
	return session.Login(cmd.Context(), cfg.Site.Login, cfg.Site.Password)
}

func init() {
	runCmd.Flags().String("query", "", "listing search query (default from config)")
	runCmd.Flags().Int("cutoff-hours", 0, "recency window in hours (default from config)")
	runCmd.Flags().Int("max-pages", 0, "maximum listing pages to walk (default from config)")
	runCmd.Flags().Bool("new-only", false, "insert unseen candidates only, skip refreshes")
	runCmd.Flags().Bool("no-score", false, "collect without calling the scoring model")
	rootCmd.AddCommand(runCmd)
}
