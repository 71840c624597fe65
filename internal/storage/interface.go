package storage

import (
	"context"

	"github.com/julianstephens/timediary/internal/models"
)

// Provider is the durable store for projects, templates, reflections and
// time entries. Upserts are keyed on each table's unique constraint and the
// last write wins.
//
// Single-entity lookups return errors.ErrNotFound when no row matches; list
// and per-day queries return an empty slice instead.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Projects
	GetProjects(ctx context.Context) ([]string, error)
	UpsertProjects(ctx context.Context, names []string) error

	// Templates
	GetTemplates(ctx context.Context) ([]models.Template, error)
	GetTemplate(ctx context.Context, name string) (models.Template, error)
	UpsertTemplates(ctx context.Context, templates ...models.Template) error
	DeleteTemplate(ctx context.Context, name string) error

	// Reflections
	GetReflection(ctx context.Context, date string) (models.Reflection, error)
	GetReflectionsInRange(ctx context.Context, from, to string) ([]models.Reflection, error)
	UpsertReflection(ctx context.Context, r models.Reflection) error

	// Time entries
	GetEntries(ctx context.Context, date string) ([]models.TimeEntry, error)
	GetEntriesInRange(ctx context.Context, from, to string) ([]models.TimeEntry, error)
	UpsertEntries(ctx context.Context, entries []models.TimeEntry) error

	// Utils
	GetConfigPath() string
}
