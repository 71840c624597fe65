// Package transfer moves the whole diary in and out of the store as JSON or CSV.
package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/timediary/internal/constants"
	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/models"
)

// Store is the slice of the storage provider the codec reads and writes.
type Store interface {
	GetProjects(ctx context.Context) ([]string, error)
	UpsertProjects(ctx context.Context, names []string) error
	GetTemplates(ctx context.Context) ([]models.Template, error)
	UpsertTemplates(ctx context.Context, templates ...models.Template) error
	GetEntriesInRange(ctx context.Context, from, to string) ([]models.TimeEntry, error)
	UpsertEntries(ctx context.Context, entries []models.TimeEntry) error
	GetReflectionsInRange(ctx context.Context, from, to string) ([]models.Reflection, error)
	UpsertReflection(ctx context.Context, r models.Reflection) error
}

// Format is a supported file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a file extension or format name to a Format.
func ParseFormat(s string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch ext {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", &apperrors.UnsupportedFileType{Ext: s}
	}
}

// FileName returns the default export file name for the given day.
func FileName(date string, f Format) string {
	ext := constants.JSONExtension
	if f == FormatCSV {
		ext = constants.CSVExtension
	}
	return constants.ExportFilePrefix + date + ext
}

// Result reports what an import wrote. Warnings hold the rows or writes
// that were skipped; they never abort the import.
type Result struct {
	Format    Format
	Days      int
	Entries   int
	Projects  int
	Templates int
	Warnings  []error
}

func (r *Result) warn(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Summary is a one-line description suitable for a notice.
func (r Result) Summary() string {
	var msg string
	if r.Format == FormatCSV {
		msg = fmt.Sprintf("Imported %d time entries from CSV", r.Entries)
	} else {
		msg = fmt.Sprintf("Imported %d days", r.Days)
	}
	if n := len(r.Warnings); n > 0 {
		msg += fmt.Sprintf(" (%d skipped)", n)
	}
	return msg
}

type Codec struct {
	store Store
	now   func() time.Time

	// Export windows in days, ending at the export anchor.
	JSONDays int
	CSVDays  int
}

func New(store Store) *Codec {
	return &Codec{
		store:    store,
		now:      time.Now,
		JSONDays: constants.JSONExportDays,
		CSVDays:  constants.CSVExportDays,
	}
}

// Export writes the dataset in format f.
func (c *Codec) Export(ctx context.Context, w io.Writer, f Format, anchor time.Time) error {
	switch f {
	case FormatJSON:
		return c.ExportJSON(ctx, w, anchor)
	case FormatCSV:
		return c.ExportCSV(ctx, w, anchor)
	default:
		return &apperrors.UnsupportedFileType{Ext: string(f)}
	}
}

// ImportFile reads path and imports it according to its extension.
func (c *Codec) ImportFile(ctx context.Context, path string) (Result, error) {
	ext := filepath.Ext(path)
	f, err := ParseFormat(ext)
	if err != nil {
		return Result{}, &apperrors.UnsupportedFileType{Ext: ext}
	}

	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	if f == FormatCSV {
		return c.ImportCSV(ctx, file)
	}
	return c.ImportJSON(ctx, file)
}

// dateWindow returns the inclusive range of n days ending at anchor.
func dateWindow(anchor time.Time, n int) (from, to string) {
	return anchor.AddDate(0, 0, -(n - 1)).Format(constants.DateFormat), anchor.Format(constants.DateFormat)
}

func validDate(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// dedupe keeps the first occurrence of each non-empty name, in order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
