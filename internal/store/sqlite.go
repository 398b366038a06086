package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/scoutline/scout-cli/internal/model"
)

// SQLiteStore implements Table using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS candidates (
	id                TEXT PRIMARY KEY,
	canonical_url     TEXT NOT NULL DEFAULT '',
	name              TEXT NOT NULL DEFAULT '',
	age               INTEGER,
	experience_years  INTEGER,
	about             TEXT NOT NULL DEFAULT '',
	education         TEXT NOT NULL DEFAULT '',
	recommendations   TEXT NOT NULL DEFAULT '[]',
	has_audio         INTEGER NOT NULL DEFAULT 0,
	has_tale_audio    INTEGER NOT NULL DEFAULT 0,
	phone             TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	commute_minutes   INTEGER,
	last_active_raw   TEXT NOT NULL DEFAULT '',
	last_active_at    DATETIME,
	score             INTEGER NOT NULL DEFAULT 0,
	explanation       TEXT NOT NULL DEFAULT '',
	first_seen_at     DATETIME NOT NULL,
	last_seen_at      DATETIME NOT NULL,
	status            TEXT NOT NULL DEFAULT 'new',
	notes             TEXT NOT NULL DEFAULT '',
	last_contacted_at DATETIME
);

CREATE TABLE IF NOT EXISTS runs (
	id                 TEXT PRIMARY KEY,
	started_at         DATETIME NOT NULL,
	query              TEXT NOT NULL DEFAULT '',
	cutoff_hours       INTEGER NOT NULL DEFAULT 0,
	pages_scanned      INTEGER NOT NULL DEFAULT 0,
	candidates_scanned INTEGER NOT NULL DEFAULT 0,
	inserted           INTEGER NOT NULL DEFAULT 0,
	updated            INTEGER NOT NULL DEFAULT 0,
	duration_ms        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(status);
CREATE INDEX IF NOT EXISTS idx_candidates_score ON candidates(score);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var candidateCols = []string{
	"id", "canonical_url", "name", "age", "experience_years", "about",
	"education", "recommendations", "has_audio", "has_tale_audio",
	"phone", "location", "commute_minutes", "last_active_raw",
	"last_active_at", "score", "explanation", "first_seen_at",
	"last_seen_at", "status", "notes", "last_contacted_at",
}

func (s *SQLiteStore) All(ctx context.Context) ([]model.Candidate, error) {
	q := fmt.Sprintf("SELECT %s FROM candidates ORDER BY id", strings.Join(candidateCols, ", "))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select candidates")
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate candidates")
}

func scanCandidate(rows *sql.Rows) (model.Candidate, error) {
	var (
		c             model.Candidate
		age           sql.NullInt64
		expYears      sql.NullInt64
		commute       sql.NullInt64
		recsJSON      string
		lastActive    sql.NullTime
		lastContacted sql.NullTime
		status        string
	)
	err := rows.Scan(
		&c.ID, &c.CanonicalURL, &c.Name, &age, &expYears, &c.About,
		&c.Education, &recsJSON, &c.HasAudio, &c.HasTaleAudio,
		&c.Phone, &c.Location, &commute, &c.LastActiveRaw,
		&lastActive, &c.Score, &c.Explanation, &c.FirstSeenAt,
		&c.LastSeenAt, &status, &c.Notes, &lastContacted,
	)
	if err != nil {
		return c, eris.Wrap(err, "sqlite: scan candidate")
	}
	if age.Valid {
		v := int(age.Int64)
		c.Age = &v
	}
	if expYears.Valid {
		v := int(expYears.Int64)
		c.ExperienceYears = &v
	}
	if commute.Valid {
		v := int(commute.Int64)
		c.CommuteMinutes = &v
	}
	if lastActive.Valid {
		t := lastActive.Time
		c.LastActiveAt = &t
	}
	if lastContacted.Valid {
		t := lastContacted.Time
		c.LastContactedAt = &t
	}
	if recsJSON != "" {
		if err := json.Unmarshal([]byte(recsJSON), &c.Recommendations); err != nil {
			return c, eris.Wrapf(err, "sqlite: decode recommendations for %s", c.ID)
		}
	}
	c.Status = model.Status(status)
	return c, nil
}

func (s *SQLiteStore) Append(ctx context.Context, batch []model.Candidate) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(candidateCols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO candidates (%s) VALUES (%s)",
		strings.Join(candidateCols, ", "), placeholders,
	))
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for i := range batch {
		c := &batch[i]
		recsJSON, err := json.Marshal(c.Recommendations)
		if err != nil {
			return eris.Wrapf(err, "sqlite: encode recommendations for %s", c.ID)
		}
		_, err = stmt.ExecContext(ctx,
			c.ID, c.CanonicalURL, c.Name, nullInt(c.Age), nullInt(c.ExperienceYears),
			c.About, c.Education, string(recsJSON), c.HasAudio, c.HasTaleAudio,
			c.Phone, c.Location, nullInt(c.CommuteMinutes), c.LastActiveRaw,
			nullTime(c.LastActiveAt), c.Score, c.Explanation, c.FirstSeenAt,
			c.LastSeenAt, string(c.Status), c.Notes, nullTime(c.LastContactedAt),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert candidate %s", c.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit insert batch")
}

func (s *SQLiteStore) Update(ctx context.Context, patches map[string]model.CandidatePatch) error {
	if len(patches) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for id, patch := range patches {
		if patch.Empty() {
			continue
		}

		var sets []string
		var args []any
		add := func(col string, v any) {
			sets = append(sets, col+" = ?")
			args = append(args, v)
		}

		if patch.LastActiveRaw != nil {
			add("last_active_raw", *patch.LastActiveRaw)
		}
		if patch.LastActiveAt != nil {
			add("last_active_at", *patch.LastActiveAt)
		}
		if patch.LastSeenAt != nil {
			add("last_seen_at", *patch.LastSeenAt)
		}
		if patch.CanonicalURL != nil {
			add("canonical_url", *patch.CanonicalURL)
		}
		if patch.Score != nil {
			add("score", *patch.Score)
		}
		if patch.Explanation != nil {
			add("explanation", *patch.Explanation)
		}

		args = append(args, id)
		q := fmt.Sprintf("UPDATE candidates SET %s WHERE id = ?", strings.Join(sets, ", "))

		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return eris.Wrapf(err, "sqlite: update candidate %s", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return eris.Wrap(err, "sqlite: rows affected")
		}
		if n == 0 {
			return eris.Errorf("sqlite: update candidate %s: no such row", id)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit update batch")
}

func (s *SQLiteStore) AppendRun(ctx context.Context, run model.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, query, cutoff_hours, pages_scanned,
			candidates_scanned, inserted, updated, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Query, run.CutoffHours, run.PagesScanned,
		run.CandidatesScanned, run.Inserted, run.Updated, run.Duration.Milliseconds(),
	)
	return eris.Wrap(err, "sqlite: insert run")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, query, cutoff_hours, pages_scanned,
			candidates_scanned, inserted, updated, duration_ms
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select runs")
	}
	defer rows.Close()

	var out []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Query, &r.CutoffHours,
			&r.PagesScanned, &r.CandidatesScanned, &r.Inserted, &r.Updated,
			&durationMS); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
