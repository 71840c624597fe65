// Package templates manages named, reusable day plans.
package templates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/models"
)

// Store is the part of the storage provider templates need.
type Store interface {
	GetTemplates(ctx context.Context) ([]models.Template, error)
	UpsertTemplates(ctx context.Context, templates ...models.Template) error
	DeleteTemplate(ctx context.Context, name string) error
}

// ConfirmFunc asks the user whether to go ahead with deleting the named template.
type ConfirmFunc func(name string) (bool, error)

// ErrDeclined is returned by Delete when the confirmation was refused.
var ErrDeclined = errors.New("template deletion declined")

// Manager caches the store's templates. It is safe for concurrent use.
type Manager struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	cache []models.Template
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Save stores snap under name, replacing any template with the same name.
func (m *Manager) Save(ctx context.Context, name string, snap models.Snapshot) (models.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Template{}, fmt.Errorf("template name cannot be empty")
	}

	t := models.Template{
		ID:        uuid.NewString(),
		Name:      name,
		Data:      snap.Clone(),
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.UpsertTemplates(ctx, t); err != nil {
		logger.Error("Failed to save template", "name", name, "error", err)
		return models.Template{}, apperrors.Write("template", name, err)
	}

	stored := m.put(t)
	stored.Data = stored.Data.Clone()
	return stored, nil
}

// Load returns a copy of the named template's blocks. Edits to the result
// never reach the stored template.
func (m *Manager) Load(name string) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.cache {
		if t.Name == name {
			return t.Data.Clone(), nil
		}
	}
	return nil, fmt.Errorf("template %q: %w", name, apperrors.ErrNotFound)
}

// Delete removes the named template once confirm agrees. A nil confirm is
// treated as a refusal.
func (m *Manager) Delete(ctx context.Context, name string, confirm ConfirmFunc) error {
	if confirm == nil {
		return ErrDeclined
	}
	ok, err := confirm(name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}

	if err := m.store.DeleteTemplate(ctx, name); err != nil {
		logger.Error("Failed to delete template", "name", name, "error", err)
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.Write("template", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.cache[:0]
	for _, t := range m.cache {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	m.cache = kept
	return nil
}

// List re-reads templates from the store so callers never show a stale list.
// On failure the last known list is returned along with the error.
func (m *Manager) List(ctx context.Context) ([]models.Template, error) {
	if err := m.Refresh(ctx); err != nil {
		return m.Cached(), err
	}
	return m.Cached(), nil
}

// Refresh replaces the cache with the store's templates.
func (m *Manager) Refresh(ctx context.Context) error {
	ts, err := m.store.GetTemplates(ctx)
	if err != nil {
		logger.Warn("Failed to fetch templates", "error", err)
		return apperrors.Fetch("templates", "", err)
	}
	m.mu.Lock()
	m.cache = ts
	m.mu.Unlock()
	return nil
}

// Cached returns the templates from the last refresh without contacting the store.
func (m *Manager) Cached() []models.Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Template, len(m.cache))
	for i, t := range m.cache {
		t.Data = t.Data.Clone()
		out[i] = t
	}
	return out
}

// put mirrors the store's upsert in the cache. An overwritten template keeps its id.
func (m *Manager) put(t models.Template) models.Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cache {
		if m.cache[i].Name == t.Name {
			t.ID = m.cache[i].ID
			m.cache[i] = t
			return t
		}
	}
	m.cache = append(m.cache, t)
	sort.Slice(m.cache, func(i, j int) bool { return m.cache[i].Name < m.cache[j].Name })
	return t
}
