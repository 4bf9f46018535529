package export

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Format selects the file type of an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", eris.Errorf("export: unknown format %q (want csv or xlsx)", s)
}

// FileName builds "<prefix>_<start>_<end>.<format>" with dates as YYYY-MM-DD.
func FileName(prefix string, start, end time.Time, f Format) string {
	return strings.Join([]string{prefix, start.Format(time.DateOnly), end.Format(time.DateOnly)}, "_") + "." + string(f)
}

// WriteFile writes rows to dir/name in format f and returns the full path.
func WriteFile(dir, name string, f Format, rows []Row) (string, error) {
	path := filepath.Join(dir, name)
	switch f {
	case FormatXLSX:
		return path, WriteXLSXFile(path, rows)
	case FormatCSV:
		return path, WriteCSVFile(path, rows)
	}
	return "", eris.Errorf("export: unknown format %q", f)
}
