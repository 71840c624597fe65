// Package app holds the diary's application state and the load/save cycle
// that keeps it in step with the store.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/timediary/internal/backup"
	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/day"
	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/storage"
	"github.com/julianstephens/timediary/internal/summary"
	"github.com/julianstephens/timediary/internal/templates"
	"github.com/julianstephens/timediary/internal/transfer"
)

const maxNotices = 20

// ErrStaleLoad is returned by Load when the selected date changed while
// the load was in flight. Its results were discarded.
var ErrStaleLoad = errors.New("load discarded: selected date changed")

// BackupFunc snapshots the store before an import.
type BackupFunc func(ctx context.Context) error

type Option func(*Controller)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithBackup sets the pre-import backup. By default SQLite stores are
// backed up with the backup package and other stores are not.
func WithBackup(fn BackupFunc) Option {
	return func(c *Controller) { c.backup = fn }
}

// WithLockfile sets the lockfile guarding AutoSave across processes.
func WithLockfile(path string) Option {
	return func(c *Controller) { c.lockPath = path }
}

// Controller owns the selected day and everything the UI shows about it.
// All methods are safe for concurrent use; the auto-save loop runs in its
// own goroutine.
type Controller struct {
	store     storage.Provider
	templates *templates.Manager
	codec     *transfer.Codec
	weekly    *summary.WeeklyAggregator
	backup    BackupFunc
	lockPath  string
	now       func() time.Time

	// saveMu serialises saves. AutoSave only ever TryLocks it.
	saveMu sync.Mutex

	mu   sync.Mutex
	date time.Time
	gen  uint64
	// blocks and reflection belong to blocksDate and reflectionDate, which
	// lag behind date until a load for the new day succeeds. Empty means
	// nothing has been loaded.
	blocks         *day.BlockStore
	blocksDate     string
	reflection     string
	reflectionDate string
	projects       []string
	persisted      map[string]struct{}
	notices        []Notice
}

func New(store storage.Provider, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		templates: templates.NewManager(store),
		codec:     transfer.New(store),
		weekly:    summary.NewWeeklyAggregator(store),
		now:       time.Now,
		blocks:    day.NewBlockStore(),
		persisted: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.backup == nil && storage.IsSQLite(store) {
		mgr := backup.NewManager(store.GetConfigPath())
		c.backup = func(ctx context.Context) error {
			_, err := mgr.Create(ctx, backup.ReasonPreImport)
			return err
		}
	}
	c.date = truncateDay(c.now())
	return c
}

// Codec exposes the import/export codec so callers can tune its windows.
func (c *Controller) Codec() *transfer.Codec {
	return c.codec
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date returns the selected day as YYYY-MM-DD.
func (c *Controller) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date.Format(constants.DateFormat)
}

// SetDate selects date (YYYY-MM-DD). Callers follow with Load.
func (c *Controller) SetDate(date string) error {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", date, err)
	}
	c.mu.Lock()
	c.date = t
	c.gen++
	c.mu.Unlock()
	return nil
}

// ChangeDate moves the selected day by days.
func (c *Controller) ChangeDate(days int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = c.date.AddDate(0, 0, days)
	c.gen++
	return c.date.Format(constants.DateFormat)
}

// Today selects the current day.
func (c *Controller) Today() string {
	today := truncateDay(c.now())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = today
	c.gen++
	return c.date.Format(constants.DateFormat)
}

// IsToday reports whether the selected day is the current day.
func (c *Controller) IsToday() bool {
	today := truncateDay(c.now())
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date.Equal(today)
}

// Load fetches projects, templates, the reflection and the entries of the
// selected day. Each failed fetch is logged and leaves its previous value in
// place, still tied to the day it was loaded for; the failures are returned
// joined. An empty day gets a default block in every slot.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	date := c.date.Format(constants.DateFormat)
	c.mu.Unlock()

	var errs []error

	projects, projErr := c.store.GetProjects(ctx)
	if projErr != nil {
		logger.Error("Failed to fetch projects", "error", projErr)
		errs = append(errs, apperrors.Fetch("projects", "", projErr))
	}

	if err := c.templates.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}

	reflection, refErr := c.store.GetReflection(ctx, date)
	if errors.Is(refErr, apperrors.ErrNotFound) {
		reflection, refErr = models.Reflection{Date: date}, nil
	}
	if refErr != nil {
		logger.Error("Failed to fetch reflection", "date", date, "error", refErr)
		errs = append(errs, apperrors.Fetch("reflection", date, refErr))
	}

	entries, entErr := c.store.GetEntries(ctx, date)
	if entErr != nil {
		logger.Error("Failed to fetch time entries", "date", date, "error", entErr)
		errs = append(errs, apperrors.Fetch("time entries", date, entErr))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		logger.Debug("Discarding stale load", "date", date)
		return ErrStaleLoad
	}

	if projErr == nil {
		c.projects = projects
		c.persisted = make(map[string]struct{}, len(projects))
		for _, p := range projects {
			c.persisted[p] = struct{}{}
		}
	}
	if refErr == nil {
		c.reflection = reflection.Content
		c.reflectionDate = date
	}
	if entErr == nil {
		c.blocksDate = date
		if len(entries) == 0 {
			c.blocks = day.NewFilledBlockStore()
		} else {
			snap := models.SnapshotFromEntries(entries)
			for slot, b := range snap {
				if b.Energy == 0 {
					b.Energy = constants.DefaultEnergy
					snap[slot] = b
				}
			}
			c.blocks = day.FromSnapshot(snap)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		c.notifyLocked(NoticeError, "Failed to load some data", err)
	}
	return err
}

// Save writes the reflection and the blocks under the days they were loaded
// for, then registers any projects the store has not seen. The writes are
// independent: one failing does not stop or undo the others.
func (c *Controller) Save(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	return c.save(ctx)
}

func (c *Controller) save(ctx context.Context) error {
	c.mu.Lock()
	date, refDate := c.blocksDate, c.reflectionDate
	reflection := models.Reflection{Date: refDate, Content: c.reflection}
	var entries []models.TimeEntry
	if date != "" {
		entries = c.blocks.Entries(date)
	}
	var newProjects []string
	for _, p := range c.projects {
		if _, ok := c.persisted[p]; !ok {
			newProjects = append(newProjects, p)
		}
	}
	c.mu.Unlock()

	if date == "" && refDate == "" {
		logger.Debug("Nothing loaded, skipping save")
		return nil
	}

	var errs []error

	if refDate != "" {
		if err := c.store.UpsertReflection(ctx, reflection); err != nil {
			logger.Error("Failed to save reflection", "date", refDate, "error", err)
			errs = append(errs, apperrors.Write("reflection", refDate, err))
		}
	}

	if len(entries) > 0 {
		if err := c.store.UpsertEntries(ctx, entries); err != nil {
			logger.Error("Failed to save time entries", "date", date, "error", err)
			errs = append(errs, apperrors.Write("time entries", date, err))
		}
	}

	if len(newProjects) > 0 {
		if err := c.store.UpsertProjects(ctx, newProjects); err != nil {
			logger.Error("Failed to save projects", "error", err)
			errs = append(errs, apperrors.Write("projects", "", err))
		} else {
			c.mu.Lock()
			for _, p := range newProjects {
				c.persisted[p] = struct{}{}
			}
			c.mu.Unlock()
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		c.notify(NoticeError, "Save failed", err)
		return err
	}
	logger.Debug("Saved day", "date", date, "entries", len(entries))
	c.notify(NoticeSuccess, "Data saved successfully", nil)
	return nil
}

// Block returns the block at slot on the selected day.
func (c *Controller) Block(slot string) models.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks.Block(slot)
}

// Snapshot returns a copy of the selected day's blocks.
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks.Snapshot()
}

// UpdateBlock edits one field of a block. Setting a project registers it.
func (c *Controller) UpdateBlock(slot string, field day.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.blocks.Update(slot, field, value); err != nil {
		return err
	}
	if field == day.FieldProject {
		c.registerLocked(value)
	}
	return nil
}

// UpdateProject tags slot with name and registers the project.
func (c *Controller) UpdateProject(slot, name string) error {
	return c.UpdateBlock(slot, day.FieldProject, name)
}

// ApplyBulkProject tags every slot in ls with name. Nothing changes if any
// slot is invalid.
func (c *Controller) ApplyBulkProject(ls []string, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("project name cannot be empty")
	}
	if len(ls) == 0 {
		return errors.New("no slots selected")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := day.FromSnapshot(c.blocks.Snapshot())
	for _, slot := range ls {
		if err := next.Update(slot, day.FieldProject, name); err != nil {
			return err
		}
	}
	c.blocks = next
	c.registerLocked(name)
	c.notifyLocked(NoticeSuccess, fmt.Sprintf("Applied %q to %d blocks", name, len(ls)), nil)
	return nil
}

func (c *Controller) registerLocked(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, p := range c.projects {
		if p == name {
			return
		}
	}
	c.projects = append(c.projects, name)
}

// Projects returns the known project names in registration order.
func (c *Controller) Projects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.projects...)
}

// ProjectIndex returns the position of name among the known projects, or -1.
func (c *Controller) ProjectIndex(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.projects {
		if p == name {
			return i
		}
	}
	return -1
}

func (c *Controller) Reflection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reflection
}

// SetReflection replaces the selected day's reflection.
func (c *Controller) SetReflection(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reflection = text
	c.reflectionDate = c.date.Format(constants.DateFormat)
}

// CopyYesterday replaces the selected day with a plan built from the
// previous day's actuals, carrying their project tags.
func (c *Controller) CopyYesterday(ctx context.Context) error {
	c.mu.Lock()
	gen := c.gen
	yesterday := c.date.AddDate(0, 0, -1).Format(constants.DateFormat)
	c.mu.Unlock()

	entries, err := c.store.GetEntries(ctx, yesterday)
	if err != nil {
		logger.Error("Failed to fetch yesterday's entries", "date", yesterday, "error", err)
		err = apperrors.Fetch("time entries", yesterday, err)
		c.notify(NoticeError, "Error fetching yesterday's data", err)
		return err
	}

	next := day.NewFilledBlockStore()
	copied := 0
	for _, e := range entries {
		if e.Block.Actual == "" {
			continue
		}
		b := next.Block(e.Slot)
		b.Plan = e.Block.Actual
		b.Project = e.Block.Project
		if err := next.Set(e.Slot, b); err != nil {
			logger.Warn("Skipping yesterday's entry", "slot", e.Slot, "error", err)
			continue
		}
		copied++
	}
	if copied == 0 {
		c.notify(NoticeWarning, "No data for yesterday", apperrors.ErrEmptyYesterday)
		return apperrors.ErrEmptyYesterday
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrStaleLoad
	}
	c.blocks = next
	c.blocksDate = c.date.Format(constants.DateFormat)
	for _, e := range entries {
		if e.Block.Actual != "" {
			c.registerLocked(e.Block.Project)
		}
	}
	c.notifyLocked(NoticeSuccess, "Yesterday's actuals copied to today's plan", nil)
	return nil
}

// Summary computes the selected day's statistics.
func (c *Controller) Summary() models.DaySummary {
	return summary.Compute(c.Snapshot())
}

// Week aggregates the seven days ending at the selected day.
func (c *Controller) Week(ctx context.Context) models.WeekSummary {
	c.mu.Lock()
	anchor := c.date
	c.mu.Unlock()

	week := c.weekly.Aggregate(ctx, anchor)
	if n := len(week.FailedDays); n > 0 {
		c.notify(NoticeWarning, fmt.Sprintf("Weekly summary is missing %d day(s)", n), nil)
	}
	return week
}

// Templates returns the template list, re-read from the store.
func (c *Controller) Templates(ctx context.Context) ([]models.Template, error) {
	return c.templates.List(ctx)
}

// SaveTemplate stores the selected day's blocks as a template.
func (c *Controller) SaveTemplate(ctx context.Context, name string) error {
	if _, err := c.templates.Save(ctx, name, c.Snapshot()); err != nil {
		c.notify(NoticeError, "Template save failed", err)
		return err
	}
	c.notify(NoticeSuccess, "Template saved", nil)
	return nil
}

// ApplyTemplate replaces the selected day's blocks with a copy of the template.
func (c *Controller) ApplyTemplate(name string) error {
	snap, err := c.templates.Load(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = day.FromSnapshot(snap)
	c.blocksDate = c.date.Format(constants.DateFormat)
	for _, b := range snap {
		c.registerLocked(b.Project)
	}
	c.notifyLocked(NoticeSuccess, "Template loaded", nil)
	return nil
}

// DeleteTemplate removes a template once confirm agrees.
func (c *Controller) DeleteTemplate(ctx context.Context, name string, confirm templates.ConfirmFunc) error {
	err := c.templates.Delete(ctx, name, confirm)
	switch {
	case errors.Is(err, templates.ErrDeclined):
		return err
	case err != nil:
		c.notify(NoticeError, "Template deletion failed", err)
		return err
	}
	c.notify(NoticeSuccess, "Template deleted", nil)
	return nil
}

// Import reads a JSON or CSV file into the store and reloads the selected
// day. A failed pre-import backup is logged and does not stop the import.
func (c *Controller) Import(ctx context.Context, path string) (transfer.Result, error) {
	if c.backup != nil {
		if err := c.backup(ctx); err != nil {
			logger.Warn("Pre-import backup failed", "error", err)
		}
	}

	res, err := c.codec.ImportFile(ctx, path)
	if err != nil {
		var unsupported *apperrors.UnsupportedFileType
		if errors.As(err, &unsupported) {
			c.notify(NoticeError, "Unsupported file", err)
		} else {
			c.notify(NoticeError, "Import failed", err)
		}
		return res, err
	}

	if loadErr := c.Load(ctx); loadErr != nil && !errors.Is(loadErr, ErrStaleLoad) {
		logger.Warn("Reload after import failed", "error", loadErr)
	}

	level := NoticeSuccess
	if len(res.Warnings) > 0 {
		level = NoticeWarning
	}
	c.notify(level, res.Summary(), nil)
	return res, nil
}

// Export writes the dataset in format f, anchored at the current day.
func (c *Controller) Export(ctx context.Context, w io.Writer, f transfer.Format) error {
	if err := c.codec.Export(ctx, w, f, truncateDay(c.now())); err != nil {
		logger.Error("Export failed", "format", f, "error", err)
		c.notify(NoticeError, "Export failed", err)
		return err
	}
	c.notify(NoticeSuccess, fmt.Sprintf("%s exported", strings.ToUpper(string(f))), nil)
	return nil
}

// ExportFileName is the default export file name for the selected day.
func (c *Controller) ExportFileName(f transfer.Format) string {
	return transfer.FileName(c.Date(), f)
}

// Notices returns the recent notices, oldest first.
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

// LastNotice returns the most recent notice, if any.
func (c *Controller) LastNotice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.notices) == 0 {
		return Notice{}, false
	}
	return c.notices[len(c.notices)-1], true
}

func (c *Controller) notify(level NoticeLevel, msg string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyLocked(level, msg, err)
}

func (c *Controller) notifyLocked(level NoticeLevel, msg string, err error) {
	c.notices = append(c.notices, Notice{Level: level, Message: msg, Err: err, At: c.now()})
	if len(c.notices) > maxNotices {
		c.notices = c.notices[len(c.notices)-maxNotices:]
	}
}

// SortedProjects returns the names in totals ordered by name.
func SortedProjects(totals map[string]models.ProjectTotals) []string {
	names := make([]string, 0, len(totals))
	for n := range totals {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
