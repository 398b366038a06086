package store

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/scoutline/scout-cli/internal/model"
)

const (
	candidatesSheet = "Candidates"
	runsSheet       = "Runs"
)

var candidateHeader = []string{
	"id", "url", "name", "age", "experience_years", "about", "education",
	"recommendations", "has_audio", "has_tale_audio", "phone", "location",
	"commute_minutes", "last_active_raw", "last_active_at", "score",
	"explanation", "first_seen_at", "last_seen_at", "status", "notes",
	"last_contacted_at",
}

var runHeader = []string{
	"id", "started_at", "query", "cutoff_hours", "pages_scanned",
	"candidates_scanned", "inserted", "updated", "duration",
}

// XLSXStore implements Table over a workbook with a Candidates sheet
// and a Runs sheet. The whole file is held in memory and rewritten on
// every mutation, which is fine at the row counts this table sees.
type XLSXStore struct {
	path string
	file *xlsx.File
}

// NewXLSX opens the workbook at path, creating it on first use.
func NewXLSX(path string) (*XLSXStore, error) {
	s := &XLSXStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.file = xlsx.NewFile()
		return s, nil
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	s.file = f
	return s, nil
}

// Migrate ensures both sheets exist with their header rows.
func (s *XLSXStore) Migrate(_ context.Context) error {
	changed := false
	for _, spec := range []struct {
		name   string
		header []string
	}{
		{candidatesSheet, candidateHeader},
		{runsSheet, runHeader},
	} {
		sheet, ok := s.file.Sheet[spec.name]
		if !ok {
			var err error
			sheet, err = s.file.AddSheet(spec.name)
			if err != nil {
				return eris.Wrapf(err, "xlsx: add sheet %s", spec.name)
			}
			changed = true
		}
		if len(sheet.Rows) == 0 {
			row := sheet.AddRow()
			for _, h := range spec.header {
				row.AddCell().SetString(h)
			}
			changed = true
		}
	}
	if changed {
		return s.save()
	}
	return nil
}

func (s *XLSXStore) Close() error {
	return nil
}

func (s *XLSXStore) save() error {
	return eris.Wrapf(s.file.Save(s.path), "xlsx: save %s", s.path)
}

func (s *XLSXStore) candidates() (*xlsx.Sheet, error) {
	sheet, ok := s.file.Sheet[candidatesSheet]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found, run migrate first", candidatesSheet)
	}
	return sheet, nil
}

func (s *XLSXStore) All(_ context.Context) ([]model.Candidate, error) {
	sheet, err := s.candidates()
	if err != nil {
		return nil, err
	}

	var out []model.Candidate
	for i, row := range sheet.Rows {
		if i == 0 {
			continue
		}
		cells := rowStrings(row, len(candidateHeader))
		if strings.TrimSpace(cells[0]) == "" {
			continue
		}
		c, err := candidateFromCells(cells)
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: row %d", i+1)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *XLSXStore) Append(_ context.Context, batch []model.Candidate) error {
	if len(batch) == 0 {
		return nil
	}
	sheet, err := s.candidates()
	if err != nil {
		return err
	}
	for i := range batch {
		writeCandidateRow(sheet.AddRow(), &batch[i])
	}
	return s.save()
}

func (s *XLSXStore) Update(_ context.Context, patches map[string]model.CandidatePatch) error {
	if len(patches) == 0 {
		return nil
	}
	sheet, err := s.candidates()
	if err != nil {
		return err
	}

	// Locate every target row before mutating anything so a missing id
	// fails the whole batch without a partial save.
	rowsByID := make(map[string]*xlsx.Row, len(patches))
	for i, row := range sheet.Rows {
		if i == 0 || len(row.Cells) == 0 {
			continue
		}
		id := row.Cells[0].String()
		if _, ok := patches[id]; ok {
			rowsByID[id] = row
		}
	}
	for id, patch := range patches {
		if patch.Empty() {
			continue
		}
		if _, ok := rowsByID[id]; !ok {
			return eris.Errorf("xlsx: update candidate %s: no such row", id)
		}
	}

	changed := false
	for id, patch := range patches {
		if patch.Empty() {
			continue
		}
		row := rowsByID[id]
		padRow(row, len(candidateHeader))
		if patch.LastActiveRaw != nil {
			row.Cells[13].SetString(*patch.LastActiveRaw)
		}
		if patch.LastActiveAt != nil {
			row.Cells[14].SetString(formatTime(patch.LastActiveAt))
		}
		if patch.LastSeenAt != nil {
			row.Cells[18].SetString(patch.LastSeenAt.Format(time.RFC3339))
		}
		if patch.CanonicalURL != nil {
			row.Cells[1].SetString(*patch.CanonicalURL)
		}
		if patch.Score != nil {
			row.Cells[15].SetInt(*patch.Score)
		}
		if patch.Explanation != nil {
			row.Cells[16].SetString(*patch.Explanation)
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return s.save()
}

func (s *XLSXStore) AppendRun(_ context.Context, run model.RunRecord) error {
	sheet, ok := s.file.Sheet[runsSheet]
	if !ok {
		return eris.Errorf("xlsx: sheet %q not found, run migrate first", runsSheet)
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	row := sheet.AddRow()
	row.AddCell().SetString(run.ID)
	row.AddCell().SetString(run.StartedAt.Format(time.RFC3339))
	row.AddCell().SetString(run.Query)
	row.AddCell().SetInt(run.CutoffHours)
	row.AddCell().SetInt(run.PagesScanned)
	row.AddCell().SetInt(run.CandidatesScanned)
	row.AddCell().SetInt(run.Inserted)
	row.AddCell().SetInt(run.Updated)
	row.AddCell().SetString(run.Duration.Round(time.Second).String())
	return s.save()
}

func (s *XLSXStore) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	sheet, ok := s.file.Sheet[runsSheet]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found, run migrate first", runsSheet)
	}
	if limit <= 0 {
		limit = 50
	}

	var out []model.RunRecord
	// Rows append chronologically; walk backwards for newest-first.
	for i := len(sheet.Rows) - 1; i >= 1 && len(out) < limit; i-- {
		cells := rowStrings(sheet.Rows[i], len(runHeader))
		if strings.TrimSpace(cells[0]) == "" {
			continue
		}
		r := model.RunRecord{ID: cells[0], Query: cells[2]}
		r.StartedAt, _ = time.Parse(time.RFC3339, cells[1])
		r.CutoffHours, _ = strconv.Atoi(cells[3])
		r.PagesScanned, _ = strconv.Atoi(cells[4])
		r.CandidatesScanned, _ = strconv.Atoi(cells[5])
		r.Inserted, _ = strconv.Atoi(cells[6])
		r.Updated, _ = strconv.Atoi(cells[7])
		r.Duration, _ = time.ParseDuration(cells[8])
		out = append(out, r)
	}
	return out, nil
}

func writeCandidateRow(row *xlsx.Row, c *model.Candidate) {
	row.AddCell().SetString(c.ID)
	row.AddCell().SetString(c.CanonicalURL)
	row.AddCell().SetString(c.Name)
	row.AddCell().SetString(formatInt(c.Age))
	row.AddCell().SetString(formatInt(c.ExperienceYears))
	row.AddCell().SetString(c.About)
	row.AddCell().SetString(c.Education)
	row.AddCell().SetString(strings.Join(c.Recommendations, "\n"))
	row.AddCell().SetBool(c.HasAudio)
	row.AddCell().SetBool(c.HasTaleAudio)
	row.AddCell().SetString(c.Phone)
	row.AddCell().SetString(c.Location)
	row.AddCell().SetString(formatInt(c.CommuteMinutes))
	row.AddCell().SetString(c.LastActiveRaw)
	row.AddCell().SetString(formatTime(c.LastActiveAt))
	row.AddCell().SetInt(c.Score)
	row.AddCell().SetString(c.Explanation)
	row.AddCell().SetString(c.FirstSeenAt.Format(time.RFC3339))
	row.AddCell().SetString(c.LastSeenAt.Format(time.RFC3339))
	row.AddCell().SetString(string(c.Status))
	row.AddCell().SetString(c.Notes)
	row.AddCell().SetString(formatTime(c.LastContactedAt))
}

func candidateFromCells(cells []string) (model.Candidate, error) {
	c := model.Candidate{
		ID:            strings.TrimSpace(cells[0]),
		CanonicalURL:  cells[1],
		Name:          cells[2],
		About:         cells[5],
		Education:     cells[6],
		Phone:         cells[10],
		Location:      cells[11],
		LastActiveRaw: cells[13],
		Explanation:   cells[16],
		Status:        model.Status(cells[19]),
		Notes:         cells[20],
	}
	c.Age = parseInt(cells[3])
	c.ExperienceYears = parseInt(cells[4])
	if cells[7] != "" {
		c.Recommendations = strings.Split(cells[7], "\n")
	}
	c.HasAudio = parseBool(cells[8])
	c.HasTaleAudio = parseBool(cells[9])
	c.CommuteMinutes = parseInt(cells[12])
	c.LastActiveAt = parseTime(cells[14])
	if v := parseInt(cells[15]); v != nil {
		c.Score = *v
	}
	c.FirstSeenAt, _ = time.Parse(time.RFC3339, cells[17])
	c.LastSeenAt, _ = time.Parse(time.RFC3339, cells[18])
	c.LastContactedAt = parseTime(cells[21])
	return c, nil
}

func rowStrings(row *xlsx.Row, width int) []string {
	cells := make([]string, width)
	for j := 0; j < width && j < len(row.Cells); j++ {
		cells[j] = row.Cells[j].String()
	}
	return cells
}

func padRow(row *xlsx.Row, width int) {
	for len(row.Cells) < width {
		row.AddCell()
	}
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Numeric cells can render as floats ("46.000000").
	if dot := strings.Index(s, "."); dot >= 0 {
		s = s[:dot]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(s))
	return v
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
