// Package export writes a point-in-time snapshot of the candidate
// table to CSV or XLSX for sharing outside the tool.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/scoutline/scout-cli/internal/model"
)

var header = []string{
	"id", "name", "score", "status", "age", "experience_years", "phone",
	"location", "commute_minutes", "last_active_raw", "last_seen_at",
	"url", "explanation", "notes",
}

// Snapshot writes rows to path, picking the format from the
// extension: .xlsx gets a workbook, everything else CSV. Rows are
// ordered best score first.
func Snapshot(rows []model.Candidate, path string) error {
	sorted := append([]model.Candidate(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXLSX(sorted, path)
	}
	return writeCSV(sorted, path)
}

func record(c *model.Candidate) []string {
	return []string{
		c.ID,
		c.Name,
		strconv.Itoa(c.Score),
		string(c.Status),
		intCell(c.Age),
		intCell(c.ExperienceYears),
		c.Phone,
		c.Location,
		intCell(c.CommuteMinutes),
		c.LastActiveRaw,
		c.LastSeenAt.Format(time.RFC3339),
		c.CanonicalURL,
		c.Explanation,
		c.Notes,
	}
}

func writeCSV(rows []model.Candidate, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for i := range rows {
		if err := w.Write(record(&rows[i])); err != nil {
			return eris.Wrapf(err, "export: write row %s", rows[i].ID)
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

func writeXLSX(rows []model.Candidate, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Candidates")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}
	for i := range rows {
		row := sheet.AddRow()
		for _, cell := range record(&rows[i]) {
			row.AddCell().SetString(cell)
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
