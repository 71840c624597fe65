package transfer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/timediary/internal/constants"
	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/slots"
)

// ExportCSV writes one row per recorded slot over the CSV window ending at anchor.
func (c *Codec) ExportCSV(ctx context.Context, w io.Writer, anchor time.Time) error {
	from, to := dateWindow(anchor, c.CSVDays)
	entries, err := c.store.GetEntriesInRange(ctx, from, to)
	if err != nil {
		return apperrors.Fetch("time entries", from+".."+to, err)
	}

	byDate := make(map[string]models.Snapshot)
	var dates []string
	for _, e := range entries {
		if _, ok := byDate[e.Date]; !ok {
			byDate[e.Date] = make(models.Snapshot)
			dates = append(dates, e.Date)
		}
		byDate[e.Date][e.Slot] = e.Block
	}
	sort.Strings(dates)

	cw := csv.NewWriter(w)
	if err := cw.Write(constants.CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := 0
	for _, date := range dates {
		day := byDate[date]
		for _, slot := range slots.All() {
			b, ok := day[slot]
			if !ok || b.IsEmpty() {
				continue
			}
			energy := b.Energy
			if energy == 0 {
				energy = constants.DefaultEnergy
			}
			record := []string{date, slot, b.Plan, b.Actual, b.Project, strconv.Itoa(energy), b.Distraction}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
			rows++
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	logger.Info("Exported CSV", "rows", rows)
	return nil
}

// ImportCSV upserts every well-formed row in one batch. Malformed rows are
// reported in the result and skipped. Reflections are never touched.
func (c *Codec) ImportCSV(ctx context.Context, r io.Reader) (Result, error) {
	res := Result{Format: FormatCSV}

	records, err := readRecords(r)
	if err != nil {
		return res, &apperrors.ParseError{Format: string(FormatCSV), Err: err}
	}

	var (
		entries  []models.TimeEntry
		index    = make(map[[2]string]int)
		projects []string
		first    = true
	)

	for _, rec := range records {
		record, line := rec.fields, rec.line
		if rec.err != nil {
			logger.Warn("Skipping unreadable CSV line", "line", line, "error", rec.err)
			res.warn(&apperrors.CSVRowMalformed{Line: line, Fields: len(record)})
			continue
		}

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) < len(constants.CSVHeader) {
			logger.Warn("Skipping malformed CSV line", "line", line, "fields", len(record))
			res.warn(&apperrors.CSVRowMalformed{Line: line, Fields: len(record)})
			continue
		}

		e, err := entryFromRecord(record)
		if err != nil {
			logger.Warn("Skipping CSV line", "line", line, "error", err)
			res.warn(fmt.Errorf("line %d: %w", line, err))
			continue
		}

		// A repeated (date, slot) replaces the earlier row.
		key := [2]string{e.Date, e.Slot}
		if i, ok := index[key]; ok {
			entries[i] = e
		} else {
			index[key] = len(entries)
			entries = append(entries, e)
		}
		if e.Block.Project != "" {
			projects = append(projects, e.Block.Project)
		}
	}

	if len(entries) > 0 {
		if err := c.store.UpsertEntries(ctx, entries); err != nil {
			logger.Error("Failed to import time entries from CSV", "error", err)
			return res, apperrors.Write("time entries", "", err)
		}
		res.Entries = len(entries)
	}

	if projects = dedupe(projects); len(projects) > 0 {
		if err := c.store.UpsertProjects(ctx, projects); err != nil {
			logger.Error("Failed to import projects from CSV", "error", err)
			res.warn(apperrors.Write("projects", "", err))
		} else {
			res.Projects = len(projects)
		}
	}

	days := make(map[string]struct{})
	for _, e := range entries {
		days[e.Date] = struct{}{}
	}
	res.Days = len(days)

	logger.Info("Imported CSV", "entries", res.Entries, "warnings", len(res.Warnings))
	return res, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), constants.CSVHeader[0])
}

func entryFromRecord(record []string) (models.TimeEntry, error) {
	field := func(i int) string { return strings.TrimSpace(record[i]) }

	date, slot := field(0), field(1)
	if !validDate(date) {
		return models.TimeEntry{}, fmt.Errorf("invalid date %q", date)
	}
	if err := slots.Validate(slot); err != nil {
		return models.TimeEntry{}, err
	}

	energy, err := strconv.Atoi(field(5))
	if err != nil {
		energy = constants.DefaultEnergy
	}

	b := models.Block{
		Plan:        field(2),
		Actual:      field(3),
		Project:     field(4),
		Energy:      energy,
		Distraction: field(6),
	}
	return models.TimeEntry{Date: date, Slot: slot, Block: b.Normalize()}, nil
}

// maxRecordLines bounds how far a quoted field may run across lines.
const maxRecordLines = 10

type csvRecord struct {
	line   int
	fields []string
	err    error
}

// readRecords splits r into CSV records. A quoted field may span lines, but
// one still open after maxRecordLines lines or at EOF is cut back to its
// first line, so the rows after it are still read.
func readRecords(r io.Reader) ([]csvRecord, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	var out []csvRecord
	for i := 0; i < len(lines); {
		end := i + 1
		open := strings.Count(lines[i], `"`)%2 == 1
		for open && end < len(lines) && end-i < maxRecordLines {
			if strings.Count(lines[end], `"`)%2 == 1 {
				open = false
			}
			end++
		}
		if open {
			end = i + 1
		}
		out = append(out, parseChunk(strings.Join(lines[i:end], "\n"), i+1)...)
		i = end
	}
	return out, nil
}

// parseChunk parses the lines starting at physical line first.
func parseChunk(chunk string, first int) []csvRecord {
	cr := csv.NewReader(strings.NewReader(chunk))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var out []csvRecord
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		var line int
		var pe *csv.ParseError
		switch {
		case err == nil:
			line, _ = cr.FieldPos(0)
		case errors.As(err, &pe):
			line = pe.StartLine
		default:
			return append(out, csvRecord{line: first, err: err})
		}
		out = append(out, csvRecord{line: first + line - 1, fields: fields, err: err})
	}
}
