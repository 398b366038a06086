// Package store persists the candidate table and the run log. Two
// backends share one interface: SQLite for local operation and XLSX
// for a table people open and edit by hand.
package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/scoutline/scout-cli/internal/model"
)

// Table defines the persistence surface the pipeline writes through.
type Table interface {
	// Candidates. Update applies all patches as one write: a single
	// transaction on SQLite, a single workbook save on XLSX.
	All(ctx context.Context) ([]model.Candidate, error)
	Append(ctx context.Context, rows []model.Candidate) error
	Update(ctx context.Context, patches map[string]model.CandidatePatch) error

	// Run log
	AppendRun(ctx context.Context, run model.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open picks a backend from the path extension: .xlsx gets the
// workbook store, anything else is treated as a SQLite database.
func Open(path string) (Table, error) {
	if path == "" {
		return nil, eris.New("store: empty path")
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return NewXLSX(path)
	}
	return NewSQLite(path)
}
