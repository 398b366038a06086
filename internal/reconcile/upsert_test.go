package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/scout-cli/internal/model"
)

type memWriter struct {
	appended    []model.Candidate
	updates     map[string][]model.CandidatePatch
	updateCalls int
}

func newMemWriter() *memWriter {
	return &memWriter{updates: make(map[string][]model.CandidatePatch)}
}

func (w *memWriter) Append(_ context.Context, rows []model.Candidate) error {
	w.appended = append(w.appended, rows...)
	return nil
}

func (w *memWriter) Update(_ context.Context, patches map[string]model.CandidatePatch) error {
	w.updateCalls++
	for id, patch := range patches {
		w.updates[id] = append(w.updates[id], patch)
	}
	return nil
}

var frozen = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.Local)

func frozenClock() time.Time { return frozen }

func TestStageInsertDefaults(t *testing.T) {
	w := newMemWriter()
	r := New(w, BuildIndex(nil), WithClock(frozenClock))

	op := r.Stage(model.Candidate{
		ID:           "608431 ",
		CanonicalURL: "https://example.org/resume/608431?ref=serp",
		Name:         "Елена",
	})
	assert.Equal(t, OpInserted, op)

	res, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 1}, res)

	require.Len(t, w.appended, 1)
	row := w.appended[0]
	assert.Equal(t, "608431", row.ID)
	assert.Equal(t, "https://example.org/resume/608431", row.CanonicalURL)
	assert.Equal(t, model.StatusNew, row.Status)
	assert.Equal(t, frozen, row.FirstSeenAt)
	assert.Equal(t, frozen, row.LastSeenAt)
}

func TestStageSkipsUnusableID(t *testing.T) {
	w := newMemWriter()
	r := New(w, BuildIndex(nil))

	assert.Equal(t, OpSkipped, r.Stage(model.Candidate{ID: "abc"}))
	assert.Equal(t, OpSkipped, r.Stage(model.Candidate{ID: ""}))

	res, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)
	assert.Empty(t, w.appended)
}

func TestStageDuplicateWithinBatchIsIdempotent(t *testing.T) {
	w := newMemWriter()
	r := New(w, BuildIndex(nil), WithClock(frozenClock))

	assert.Equal(t, OpInserted, r.Stage(model.Candidate{ID: "111"}))
	assert.Equal(t, OpSkipped, r.Stage(model.Candidate{ID: "111"}))

	res, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, w.appended, 1)
}

func TestStageUpdatePatchAllowList(t *testing.T) {
	stored := model.Candidate{
		ID:           "222",
		CanonicalURL: "https://example.org/resume/222",
		Status:       model.StatusContacted,
		Notes:        "spoke on Monday",
		Score:        8,
	}
	w := newMemWriter()
	r := New(w, BuildIndex([]model.Candidate{stored}), WithClock(frozenClock))

	active := frozen.Add(-time.Hour)
	op := r.Stage(model.Candidate{
		ID:            "222",
		CanonicalURL:  "https://example.org/resume/222?ref=serp",
		LastActiveRaw: "1 час назад",
		LastActiveAt:  &active,
		Status:        model.StatusNew, // must not leak into the patch
	})
	assert.Equal(t, OpUpdated, op)

	res, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	patches := w.updates["222"]
	require.Len(t, patches, 1)
	p := patches[0]
	require.NotNil(t, p.LastActiveRaw)
	assert.Equal(t, "1 час назад", *p.LastActiveRaw)
	require.NotNil(t, p.LastSeenAt)
	assert.Equal(t, frozen, *p.LastSeenAt)
	// Stored URL already matches the normalized scan, so no rewrite.
	assert.Nil(t, p.CanonicalURL)
	assert.Nil(t, p.Score)
	assert.Nil(t, p.Explanation)
}

func TestStageUpdateRewritesBlankOrChangedURL(t *testing.T) {
	stored := []model.Candidate{
		{ID: "1", CanonicalURL: ""},
		{ID: "2", CanonicalURL: "https://example.org/old/2"},
	}
	w := newMemWriter()
	r := New(w, BuildIndex(stored), WithClock(frozenClock))

	r.Stage(model.Candidate{ID: "1", CanonicalURL: "https://example.org/resume/1"})
	r.Stage(model.Candidate{ID: "2", CanonicalURL: "https://example.org/resume/2/"})

	_, err := r.Flush(context.Background())
	require.NoError(t, err)

	require.NotNil(t, w.updates["1"][0].CanonicalURL)
	assert.Equal(t, "https://example.org/resume/1", *w.updates["1"][0].CanonicalURL)
	require.NotNil(t, w.updates["2"][0].CanonicalURL)
	assert.Equal(t, "https://example.org/resume/2", *w.updates["2"][0].CanonicalURL)
}

func TestFlushBatchesPatchesIntoOneWrite(t *testing.T) {
	stored := []model.Candidate{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	w := newMemWriter()
	r := New(w, BuildIndex(stored), WithClock(frozenClock))

	r.Stage(model.Candidate{ID: "1", LastActiveRaw: "Сейчас на сайте"})
	r.Stage(model.Candidate{ID: "2", LastActiveRaw: "1 час назад"})
	r.Stage(model.Candidate{ID: "3", LastActiveRaw: "Вчера"})

	res, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Updated)

	// All three patches land through a single writer call.
	assert.Equal(t, 1, w.updateCalls)
	assert.Len(t, w.updates, 3)
}

func TestNewOnlySkipsExisting(t *testing.T) {
	w := newMemWriter()
	r := New(w, BuildIndex([]model.Candidate{{ID: "333"}}), NewOnly())

	assert.Equal(t, OpSkipped, r.Stage(model.Candidate{ID: "333"}))
	assert.Equal(t, OpInserted, r.Stage(model.Candidate{ID: "444"}))

	res, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, w.updates)
}

func TestFlushFoldsWritesIntoIndex(t *testing.T) {
	w := newMemWriter()
	idx := BuildIndex(nil)
	r := New(w, idx, WithClock(frozenClock))

	r.Stage(model.Candidate{ID: "555", CanonicalURL: "https://example.org/resume/555"})
	_, err := r.Flush(context.Background())
	require.NoError(t, err)

	// A second batch must see the first batch's insert as an update.
	assert.Equal(t, OpUpdated, r.Stage(model.Candidate{ID: "555", LastActiveRaw: "Сейчас на сайте"}))
	_, err = r.Flush(context.Background())
	require.NoError(t, err)

	got, ok := idx.Get("555")
	require.True(t, ok)
	assert.Equal(t, "Сейчас на сайте", got.LastActiveRaw)
	assert.Len(t, w.appended, 1)
}

func TestBuildIndexNormalizesIDs(t *testing.T) {
	idx := BuildIndex([]model.Candidate{
		{ID: " 777 "},
		{ID: "bogus"},
	})
	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Has("777"))
	assert.False(t, idx.Has("bogus"))
}
