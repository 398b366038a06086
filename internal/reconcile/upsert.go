// Package reconcile merges freshly scanned candidates into the stored
// table without ever clobbering human-owned columns. Inserts get
// defaults, updates go through a fixed allow-list patch.
package reconcile

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/identity"
	"github.com/scoutline/scout-cli/internal/model"
)

// Writer is the subset of the store the reconciler writes through.
// Update takes the whole patch batch so a flush costs one write per
// kind, not one per row.
type Writer interface {
	Append(ctx context.Context, rows []model.Candidate) error
	Update(ctx context.Context, patches map[string]model.CandidatePatch) error
}

// Index is the in-memory view of the stored table, keyed by normalized
// candidate ID. Load it once per run; the reconciler keeps it current
// as writes land.
type Index struct {
	rows map[string]*model.Candidate
}

// BuildIndex constructs an Index from stored rows. Rows whose ID does
// not normalize to a non-empty digit string are ignored.
func BuildIndex(rows []model.Candidate) *Index {
	ix := &Index{rows: make(map[string]*model.Candidate, len(rows))}
	for i := range rows {
		id := identity.NormalizeID(rows[i].ID)
		if id == "" {
			continue
		}
		r := rows[i]
		r.ID = id
		ix.rows[id] = &r
	}
	return ix
}

// Get returns the stored row for a normalized ID.
func (ix *Index) Get(id string) (*model.Candidate, bool) {
	c, ok := ix.rows[id]
	return c, ok
}

// Has reports whether the ID is already stored.
func (ix *Index) Has(id string) bool {
	_, ok := ix.rows[identity.NormalizeID(id)]
	return ok
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int {
	return len(ix.rows)
}

// Op classifies what the reconciler decided to do with one candidate.
type Op int

const (
	OpSkipped Op = iota
	OpInserted
	OpUpdated
)

// Result summarizes one flushed reconciliation batch.
type Result struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Written is the number of rows the flush touched.
func (r Result) Written() int {
	return r.Inserted + r.Updated
}

type stagedUpdate struct {
	id    string
	patch model.CandidatePatch
}

// Reconciler stages candidates during a scan and applies them to the
// store in batches. Staging the same ID twice in one batch is a no-op,
// so re-running over an overlapping listing stays idempotent.
type Reconciler struct {
	writer  Writer
	idx     *Index
	newOnly bool
	now     func() time.Time

	staged  map[string]bool
	inserts []model.Candidate
	updates []stagedUpdate
	skipped int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// NewOnly skips candidates that already exist in the index instead of
// refreshing them.
func NewOnly() Option {
	return func(r *Reconciler) { r.newOnly = true }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a Reconciler over a loaded index.
func New(writer Writer, idx *Index, opts ...Option) *Reconciler {
	r := &Reconciler{
		writer: writer,
		idx:    idx,
		now:    time.Now,
		staged: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stage queues one scanned candidate. It decides insert vs update
// against the index and returns the decision without writing anything.
func (r *Reconciler) Stage(c model.Candidate) Op {
	id := identity.NormalizeID(c.ID)
	if id == "" {
		zap.L().Debug("reconcile: skipping candidate with unusable id",
			zap.String("raw_id", c.ID))
		r.skipped++
		return OpSkipped
	}
	if r.staged[id] {
		r.skipped++
		return OpSkipped
	}
	c.ID = id
	c.CanonicalURL = identity.NormalizeURL(c.CanonicalURL)

	existing, ok := r.idx.Get(id)
	if !ok {
		now := r.now()
		if c.Status == "" {
			c.Status = model.StatusNew
		}
		c.FirstSeenAt = now
		c.LastSeenAt = now
		r.inserts = append(r.inserts, c)
		r.staged[id] = true
		return OpInserted
	}

	if r.newOnly {
		r.skipped++
		return OpSkipped
	}

	r.updates = append(r.updates, stagedUpdate{id: id, patch: r.buildPatch(existing, &c)})
	r.staged[id] = true
	return OpUpdated
}

// buildPatch computes the allow-listed refresh for an existing row.
// LastSeenAt always moves; activity fields move when the scan saw
// them; the URL is overwritten only when the stored one is blank or
// points somewhere else. Score, explanation and every human-owned
// column stay untouched.
func (r *Reconciler) buildPatch(existing, scanned *model.Candidate) model.CandidatePatch {
	now := r.now()
	patch := model.CandidatePatch{LastSeenAt: &now}

	if scanned.LastActiveRaw != "" {
		raw := scanned.LastActiveRaw
		patch.LastActiveRaw = &raw
		patch.LastActiveAt = scanned.LastActiveAt
	}

	if scanned.CanonicalURL != "" &&
		(existing.CanonicalURL == "" || existing.CanonicalURL != scanned.CanonicalURL) {
		u := scanned.CanonicalURL
		patch.CanonicalURL = &u
	}

	return patch
}

// Flush applies staged work as two batched writes: one append for all
// inserts, one update for all queued patches. The index absorbs every
// applied write so a later batch in the same run sees them.
func (r *Reconciler) Flush(ctx context.Context) (Result, error) {
	res := Result{Skipped: r.skipped}

	if len(r.inserts) > 0 {
		if err := r.writer.Append(ctx, r.inserts); err != nil {
			return res, eris.Wrap(err, "reconcile: append batch")
		}
		for i := range r.inserts {
			row := r.inserts[i]
			r.idx.rows[row.ID] = &row
		}
		res.Inserted = len(r.inserts)
	}

	if len(r.updates) > 0 {
		patches := make(map[string]model.CandidatePatch, len(r.updates))
		for _, u := range r.updates {
			patches[u.id] = u.patch
		}
		if err := r.writer.Update(ctx, patches); err != nil {
			return res, eris.Wrap(err, "reconcile: update batch")
		}
		for _, u := range r.updates {
			applyPatch(r.idx.rows[u.id], u.patch)
		}
		res.Updated = len(r.updates)
	}

	zap.L().Debug("reconcile: batch flushed",
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
	)

	r.inserts = nil
	r.updates = nil
	r.skipped = 0
	r.staged = make(map[string]bool)
	return res, nil
}

func applyPatch(c *model.Candidate, p model.CandidatePatch) {
	if c == nil {
		return
	}
	if p.LastActiveRaw != nil {
		c.LastActiveRaw = *p.LastActiveRaw
	}
	if p.LastActiveAt != nil {
		c.LastActiveAt = p.LastActiveAt
	}
	if p.LastSeenAt != nil {
		c.LastSeenAt = *p.LastSeenAt
	}
	if p.CanonicalURL != nil {
		c.CanonicalURL = *p.CanonicalURL
	}
	if p.Score != nil {
		c.Score = *p.Score
	}
	if p.Explanation != nil {
		c.Explanation = *p.Explanation
	}
}
