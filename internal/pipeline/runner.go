package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/identity"
	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/recency"
	"github.com/scoutline/scout-cli/internal/reconcile"
	"github.com/scoutline/scout-cli/internal/scoring"
	"github.com/scoutline/scout-cli/internal/store"
)

const (
	defaultCutoffHours = 48
	defaultMaxPages    = 20
)

// Options configures one discovery run.
type Options struct {
	Query          string
	JobDescription string
	CutoffHours    int
	MaxPages       int
	NewOnly        bool
}

// Runner executes discovery runs. A nil gateway disables scoring;
// candidates are still collected with Score 0.
type Runner struct {
	reader  ProfileReader
	table   store.Table
	gateway *scoring.Gateway
	opts    Options
	now     func() time.Time
}

// NewRunner wires a Runner. Zero option fields get defaults.
func NewRunner(reader ProfileReader, table store.Table, gateway *scoring.Gateway, opts Options) *Runner {
	if opts.CutoffHours <= 0 {
		opts.CutoffHours = defaultCutoffHours
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	return &Runner{
		reader:  reader,
		table:   table,
		gateway: gateway,
		opts:    opts,
		now:     time.Now,
	}
}

// Run walks listing pages until the recency window runs dry, the page
// cap is hit or pagination ends. One candidate failing is logged and
// skipped; only table and navigation errors abort the run. The audit
// record is appended to the run log and returned either way.
func (r *Runner) Run(ctx context.Context) (*model.RunRecord, error) {
	log := zap.L().With(zap.String("query", r.opts.Query))
	start := r.now()

	record := &model.RunRecord{
		StartedAt:   start,
		Query:       r.opts.Query,
		CutoffHours: r.opts.CutoffHours,
	}

	rows, err := r.table.All(ctx)
	if err != nil {
		return record, eris.Wrap(err, "pipeline: load table")
	}
	idx := reconcile.BuildIndex(rows)
	log.Info("pipeline: starting run",
		zap.Int("known_candidates", idx.Len()),
		zap.Int("cutoff_hours", r.opts.CutoffHours),
	)

	var recOpts []reconcile.Option
	if r.opts.NewOnly {
		recOpts = append(recOpts, reconcile.NewOnly())
	}
	rec := reconcile.New(r.table, idx, recOpts...)

	seen := make(map[string]bool)

	for page := 1; page <= r.opts.MaxPages; page++ {
		cards, err := r.reader.Cards(ctx)
		if err != nil {
			r.finish(ctx, record)
			return record, eris.Wrapf(err, "pipeline: read page %d", page)
		}
		record.PagesScanned++

		for _, card := range cards {
			if err := ctx.Err(); err != nil {
				r.finish(ctx, record)
				return record, eris.Wrap(err, "pipeline: run cancelled")
			}
			record.CandidatesScanned++

			id := identity.NormalizeID(card.ID)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true

			if err := r.processCard(ctx, rec, idx, id, card); err != nil {
				log.Warn("pipeline: candidate failed, continuing",
					zap.String("candidate_id", id),
					zap.Error(err),
				)
			}
		}

		res, err := rec.Flush(ctx)
		if err != nil {
			r.finish(ctx, record)
			return record, eris.Wrapf(err, "pipeline: flush page %d", page)
		}
		record.Inserted += res.Inserted
		record.Updated += res.Updated

		log.Info("pipeline: page done",
			zap.Int("page", page),
			zap.Int("inserted", res.Inserted),
			zap.Int("updated", res.Updated),
			zap.Int("skipped", res.Skipped),
		)

		// Listings sort by activity, so the first page with nothing
		// inside the window means every later page is stale too.
		if res.Written() == 0 {
			log.Info("pipeline: page yielded no recent candidates, stopping")
			break
		}
		if page == r.opts.MaxPages {
			log.Info("pipeline: page cap reached")
			break
		}

		ok, err := r.reader.AdvancePage(ctx)
		if err != nil {
			log.Warn("pipeline: pagination failed, stopping", zap.Error(err))
			break
		}
		if !ok {
			log.Info("pipeline: no further pages")
			break
		}
	}

	record.Duration = r.now().Sub(start)
	r.finish(ctx, record)

	log.Info("pipeline: run complete",
		zap.Int("pages", record.PagesScanned),
		zap.Int("scanned", record.CandidatesScanned),
		zap.Int("inserted", record.Inserted),
		zap.Int("updated", record.Updated),
		zap.Duration("duration", record.Duration),
	)
	return record, nil
}

func (r *Runner) finish(ctx context.Context, record *model.RunRecord) {
	if record.Duration == 0 {
		record.Duration = r.now().Sub(record.StartedAt)
	}
	if err := r.table.AppendRun(ctx, *record); err != nil {
		zap.L().Warn("pipeline: failed to append run record", zap.Error(err))
	}
}

// processCard decides what one card becomes. Cards outside the recency
// window are dropped. Known candidates get a card-level refresh
// without opening the profile. Unseen candidates get the full
// open/probe/score treatment.
func (r *Runner) processCard(ctx context.Context, rec *reconcile.Reconciler, idx *reconcile.Index, id string, card Card) error {
	now := r.now()
	activeAt, ok := recency.ParseLastActive(card.LastActiveRaw, now)
	if !ok {
		// Unreadable activity means no evidence of recency.
		zap.L().Debug("pipeline: unparseable last-active, skipping",
			zap.String("candidate_id", id),
			zap.String("raw", card.LastActiveRaw),
		)
		return nil
	}
	if !recency.IsRecent(activeAt, now, r.opts.CutoffHours) {
		return nil
	}

	if idx.Has(id) {
		rec.Stage(model.Candidate{
			ID:            id,
			CanonicalURL:  card.URL,
			LastActiveRaw: card.LastActiveRaw,
			LastActiveAt:  &activeAt,
		})
		return nil
	}

	if err := r.reader.OpenCandidate(ctx, card); err != nil {
		return eris.Wrap(err, "pipeline: open profile")
	}
	defer func() {
		if err := r.reader.ReturnToListing(ctx); err != nil {
			zap.L().Warn("pipeline: failed to return to listing",
				zap.String("candidate_id", id),
				zap.Error(err),
			)
		}
	}()

	profile, err := r.reader.ReadProfile(ctx)
	if err != nil {
		return eris.Wrap(err, "pipeline: read profile")
	}

	c := buildCandidate(id, card, profile, activeAt)
	if r.gateway != nil && r.opts.JobDescription != "" {
		res := r.gateway.Score(ctx, r.opts.JobDescription, &c)
		c.Score = res.FinalScore
		c.Explanation = scoring.FormatExplanation(res)
	}

	rec.Stage(c)
	return nil
}

func buildCandidate(id string, card Card, p *model.RawProfile, activeAt time.Time) model.Candidate {
	return model.Candidate{
		ID:              id,
		CanonicalURL:    card.URL,
		Name:            p.Name.Or(""),
		Age:             p.Age.Ptr(),
		ExperienceYears: p.ExperienceYears.Ptr(),
		About:           p.About.Or(""),
		Education:       p.Education.Or(""),
		Recommendations: p.Recommendations.Or(nil),
		HasAudio:        p.HasAudio.Or(false),
		HasTaleAudio:    p.HasTaleAudio.Or(false),
		Phone:           p.Phone.Or(""),
		Location:        p.Location.Or(""),
		CommuteMinutes:  p.CommuteMinutes.Ptr(),
		LastActiveRaw:   card.LastActiveRaw,
		LastActiveAt:    &activeAt,
	}
}
