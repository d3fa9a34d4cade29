// Package export writes scraped records and analyses to disk as JSON,
// CSV, and XLSX. Every run gets timestamped filenames derived from the
// query so repeated runs never clobber each other.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/gleaner/models"
)

var slugPattern = regexp.MustCompile(`\W+`)

// Writer persists run artifacts under a single output directory.
type Writer struct {
	dir string
	now func() time.Time // injected in tests for stable filenames
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// filename builds <dir>/<slug>_<kind>_<timestamp>.<ext>.
func (w *Writer) filename(query, kind, ext string) string {
	slug := slugPattern.ReplaceAllString(query, "_")
	stamp := w.now().Format("20060102_150405")
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s_%s.%s", slug, kind, stamp, ext))
}

func (w *Writer) ensureDir() error {
	return os.MkdirAll(w.dir, 0o755)
}

// Records writes the collection in the requested format and returns
// the path written. Format is one of "json", "csv", "xlsx".
func (w *Writer) Records(records []*models.Record, query, format string) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", fmt.Errorf("export: create output dir: %w", err)
	}
	var (
		path string
		err  error
	)
	switch format {
	case "json":
		path = w.filename(query, "records", "json")
		err = writeJSON(path, records)
	case "csv":
		path = w.filename(query, "records", "csv")
		err = writeCSV(path, records)
	case "xlsx":
		path = w.filename(query, "records", "xlsx")
		err = writeXLSX(path, records)
	default:
		return "", fmt.Errorf("export: unknown format %q", format)
	}
	if err != nil {
		return "", err
	}
	slog.Info("records exported", "path", path, "count", len(records), "format", format)
	return path, nil
}

// Analysis writes the analysis summary as JSON next to the records.
func (w *Writer) Analysis(a models.Analysis, query string) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", fmt.Errorf("export: create output dir: %w", err)
	}
	path := w.filename(query, "analysis", "json")
	if err := writeJSON(path, a); err != nil {
		return "", err
	}
	return path, nil
}

// SaveRaw keeps a fetched page under <dir>/debug for selector work
// when extraction comes back empty in the field.
func (w *Writer) SaveRaw(pageURL string, body []byte) error {
	debugDir := filepath.Join(w.dir, "debug")
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		return fmt.Errorf("export: create debug dir: %w", err)
	}
	name := slugPattern.ReplaceAllString(pageURL, "_")
	if len(name) > 120 {
		name = name[:120]
	}
	path := filepath.Join(debugDir, name+".html")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("export: save raw page: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// columns is the sorted union of flattened keys across all records,
// with the identity columns pinned to the front.
func columns(flats []map[string]string) []string {
	set := make(map[string]struct{})
	for _, f := range flats {
		for k := range f {
			set[k] = struct{}{}
		}
	}
	delete(set, "url")
	delete(set, "scraped_at")
	rest := make([]string, 0, len(set))
	for k := range set {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append([]string{"url", "scraped_at"}, rest...)
}

func flatten(records []*models.Record) ([]map[string]string, []string) {
	flats := make([]map[string]string, len(records))
	for i, r := range records {
		flats[i] = r.Flat()
	}
	return flats, columns(flats)
}

func writeCSV(path string, records []*models.Record) error {
	flats, cols := flatten(records)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	row := make([]string, len(cols))
	for _, flat := range flats {
		for i, c := range cols {
			row[i] = flat[c]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(path string, records []*models.Record) error {
	flats, cols := flatten(records)

	wb := excelize.NewFile()
	defer wb.Close()
	const sheet = "Records"
	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for i, flat := range flats {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = flat[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+2, err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}
