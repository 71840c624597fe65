package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/timediary/internal/constants"
	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/slots"
)

// Document is the JSON export layout.
type Document struct {
	Projects  []string          `json:"projects"`
	Templates []TemplateDoc     `json:"templates"`
	Entries   map[string]DayDoc `json:"entries"`
}

type TemplateDoc struct {
	Name    string          `json:"name"`
	Data    models.Snapshot `json:"data"`
	Created string          `json:"created"`
}

type DayDoc struct {
	Blocks     models.Snapshot `json:"blocks"`
	Reflection string          `json:"reflection"`
}

// BuildDocument reads projects, templates and the last days of entries and
// reflections ending at anchor.
func (c *Codec) BuildDocument(ctx context.Context, anchor time.Time, days int) (*Document, error) {
	doc := &Document{
		Projects:  []string{},
		Templates: []TemplateDoc{},
		Entries:   make(map[string]DayDoc),
	}

	projects, err := c.store.GetProjects(ctx)
	if err != nil {
		return nil, apperrors.Fetch("projects", "", err)
	}
	doc.Projects = append(doc.Projects, projects...)

	templates, err := c.store.GetTemplates(ctx)
	if err != nil {
		return nil, apperrors.Fetch("templates", "", err)
	}
	for _, t := range templates {
		doc.Templates = append(doc.Templates, TemplateDoc{
			Name:    t.Name,
			Data:    t.Data,
			Created: t.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	from, to := dateWindow(anchor, days)
	entries, err := c.store.GetEntriesInRange(ctx, from, to)
	if err != nil {
		return nil, apperrors.Fetch("time entries", from+".."+to, err)
	}
	for _, e := range entries {
		day := doc.day(e.Date)
		b := e.Block
		if b.Energy == 0 {
			b.Energy = constants.DefaultEnergy
		}
		day.Blocks[e.Slot] = b
		doc.Entries[e.Date] = day
	}

	reflections, err := c.store.GetReflectionsInRange(ctx, from, to)
	if err != nil {
		return nil, apperrors.Fetch("reflections", from+".."+to, err)
	}
	for _, r := range reflections {
		day := doc.day(r.Date)
		day.Reflection = r.Content
		doc.Entries[r.Date] = day
	}

	return doc, nil
}

func (d *Document) day(date string) DayDoc {
	day, ok := d.Entries[date]
	if !ok {
		day = DayDoc{Blocks: make(models.Snapshot)}
	}
	return day
}

// ExportJSON writes the JSON window of days ending at anchor, plus every
// project and template.
func (c *Codec) ExportJSON(ctx context.Context, w io.Writer, anchor time.Time) error {
	doc, err := c.BuildDocument(ctx, anchor, c.JSONDays)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	logger.Info("Exported JSON", "days", len(doc.Entries), "templates", len(doc.Templates))
	return nil
}

// ImportJSON merges a JSON export into the store. The whole document is
// decoded before anything is written, so a malformed file changes nothing.
func (c *Codec) ImportJSON(ctx context.Context, r io.Reader) (Result, error) {
	res := Result{Format: FormatJSON}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return res, &apperrors.ParseError{Format: string(FormatJSON), Err: err}
	}

	if projects := dedupe(doc.Projects); len(projects) > 0 {
		if err := c.store.UpsertProjects(ctx, projects); err != nil {
			logger.Error("Failed to import projects", "error", err)
			res.warn(apperrors.Write("projects", "", err))
		} else {
			res.Projects = len(projects)
		}
	}

	if templates := c.templatesFrom(doc.Templates, &res); len(templates) > 0 {
		if err := c.store.UpsertTemplates(ctx, templates...); err != nil {
			logger.Error("Failed to import templates", "error", err)
			res.warn(apperrors.Write("templates", "", err))
		} else {
			res.Templates = len(templates)
		}
	}

	dates := make([]string, 0, len(doc.Entries))
	for date := range doc.Entries {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		if !validDate(date) {
			res.warn(fmt.Errorf("skipping entries for invalid date %q", date))
			continue
		}
		day := doc.Entries[date]

		if day.Reflection != "" {
			err := c.store.UpsertReflection(ctx, models.Reflection{Date: date, Content: day.Reflection})
			if err != nil {
				logger.Error("Failed to import reflection", "date", date, "error", err)
				res.warn(apperrors.Write("reflection", date, err))
			}
		}

		labels := keys(day.Blocks)
		slots.Sort(labels)
		entries := make([]models.TimeEntry, 0, len(labels))
		for _, slot := range labels {
			if !slots.IsValid(slot) {
				res.warn(fmt.Errorf("skipping %s %s: invalid slot", date, slot))
				continue
			}
			entries = append(entries, models.TimeEntry{Date: date, Slot: slot, Block: day.Blocks[slot].Normalize()})
		}
		if len(entries) > 0 {
			if err := c.store.UpsertEntries(ctx, entries); err != nil {
				logger.Error("Failed to import time entries", "date", date, "error", err)
				res.warn(apperrors.Write("time entries", date, err))
			} else {
				res.Entries += len(entries)
			}
		}
		res.Days++
	}

	logger.Info("Imported JSON", "days", res.Days, "entries", res.Entries, "warnings", len(res.Warnings))
	return res, nil
}

func (c *Codec) templatesFrom(docs []TemplateDoc, res *Result) []models.Template {
	out := make([]models.Template, 0, len(docs))
	seen := make(map[string]int, len(docs))
	for _, td := range docs {
		if td.Name == "" {
			res.warn(fmt.Errorf("skipping template without a name"))
			continue
		}
		created, err := time.Parse(time.RFC3339Nano, td.Created)
		if err != nil {
			created = c.now().UTC()
		}
		data := make(models.Snapshot, len(td.Data))
		for slot, b := range td.Data {
			data[slot] = b.Normalize()
		}
		t := models.Template{ID: uuid.NewString(), Name: td.Name, Data: data, CreatedAt: created}

		// A later duplicate replaces the earlier one, as a second upsert would.
		if i, ok := seen[td.Name]; ok {
			out[i] = t
			continue
		}
		seen[td.Name] = len(out)
		out = append(out, t)
	}
	return out
}

func keys(snap models.Snapshot) []string {
	out := make([]string, 0, len(snap))
	for k := range snap {
		out = append(out, k)
	}
	return out
}
