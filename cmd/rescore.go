package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scoutline/scout-cli/internal/jobspec"
	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/scoring"
	"github.com/scoutline/scout-cli/pkg/anthropic"
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Re-run scoring over stored candidates",
	Long:  "Scores rows already in the table against the current job description without touching the site. Human-owned columns are never written.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		onlyMissing, _ := cmd.Flags().GetBool("only-missing")
		limit, _ := cmd.Flags().GetInt("limit")
		timeoutSecs, _ := cmd.Flags().GetInt("timeout")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		if cfg.Anthropic.Key == "" {
			return eris.New("rescore: SCOUT_ANTHROPIC_KEY is not set")
		}
		spec, err := jobspec.Load(cfg.Job.SpecPath)
		if err != nil {
			return err
		}
		jd := spec.Render()

		timeout := time.Duration(timeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second
		}
		gateway := scoring.NewGateway(anthropic.NewClient(cfg.Anthropic.Key), scoring.GatewayConfig{
			Model:     cfg.Anthropic.Model,
			MaxTokens: int64(cfg.Anthropic.MaxTokens),
			Timeout:   timeout,
		})

		tbl, err := openTable(cmd)
		if err != nil {
			return err
		}
		defer tbl.Close() //nolint:errcheck

		rows, err := tbl.All(ctx)
		if err != nil {
			return err
		}

		var targets []model.Candidate
		for _, c := range rows {
			if onlyMissing && c.Score != 0 {
				continue
			}
			targets = append(targets, c)
			if limit > 0 && len(targets) == limit {
				break
			}
		}
		if len(targets) == 0 {
			fmt.Println("Nothing to rescore.")
			return nil
		}
		zap.L().Info("rescore: starting",
			zap.Int("candidates", len(targets)),
			zap.Bool("dry_run", dryRun),
		)

		// Score in parallel, then write everything as one batch.
		results := make([]*model.ScoreResult, len(targets))
		var failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i := range targets {
			g.Go(func() error {
				res := gateway.Score(gctx, jd, &targets[i])
				if res.Failed() {
					failed.Add(1)
					zap.L().Warn("rescore: scoring failed",
						zap.String("candidate_id", targets[i].ID),
						zap.Strings("reasons", res.ReasonsByCategory["error"]),
					)
					return nil
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "rescore: scoring pool")
		}

		scored := 0
		patches := make(map[string]model.CandidatePatch, len(targets))
		for i, res := range results {
			if res == nil {
				continue
			}
			scored++
			if dryRun {
				fmt.Printf("%s  %d -> %d\n", targets[i].ID, targets[i].Score, res.FinalScore)
				continue
			}
			explanation := scoring.FormatExplanation(res)
			patches[targets[i].ID] = model.CandidatePatch{
				Score:       &res.FinalScore,
				Explanation: &explanation,
			}
		}
		if err := tbl.Update(ctx, patches); err != nil {
			return eris.Wrap(err, "rescore: update batch")
		}

		fmt.Printf("Rescored: %d  Failed: %d\n", scored, failed.Load())
		return nil
	},
}

func init() {
	rescoreCmd.Flags().Bool("only-missing", false, "score only rows with no score yet")
	rescoreCmd.Flags().Int("limit", 0, "stop after this many candidates (0 = all)")
	rescoreCmd.Flags().Int("timeout", 0, "per-candidate scoring timeout in seconds")
	rescoreCmd.Flags().Bool("dry-run", false, "print would-be scores without writing")
	rescoreCmd.Flags().Int("concurrency", 4, "parallel scoring requests")
	rootCmd.AddCommand(rescoreCmd)
}
