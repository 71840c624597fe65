package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	pq "github.com/lib/pq"

	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/models"
)

const entryColumns = "date, time_slot, planned, actual, project_tag, energy_level, distraction_reason"

func (s *Store) GetProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM projects ORDER BY created_at, name")
	if err != nil {
		return nil, describe(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) UpsertProjects(ctx context.Context, names []string) error {
	var clean []string
	for _, n := range names {
		if n != "" {
			clean = append(clean, n)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (name)
		SELECT DISTINCT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING`,
		pq.Array(clean),
	)
	return describe(err)
}

func (s *Store) GetTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, data, created_at FROM templates ORDER BY name")
	if err != nil {
		return nil, describe(err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Store) GetTemplate(ctx context.Context, name string) (models.Template, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, data, created_at FROM templates WHERE name = $1", name)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return models.Template{}, fmt.Errorf("template %q: %w", name, apperrors.ErrNotFound)
	}
	return t, describe(err)
}

func (s *Store) UpsertTemplates(ctx context.Context, templates ...models.Template) error {
	if len(templates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return describe(err)
	}
	defer tx.Rollback()

	for _, t := range templates {
		data, err := json.Marshal(t.Data)
		if err != nil {
			return fmt.Errorf("failed to encode template %q: %w", t.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO templates (id, name, data, created_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET
				data = EXCLUDED.data,
				created_at = EXCLUDED.created_at`,
			t.ID, t.Name, string(data), t.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert template %q: %w", t.Name, describe(err))
		}
	}
	return describe(tx.Commit())
}

func (s *Store) DeleteTemplate(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE name = $1", name)
	if err != nil {
		return describe(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("template %q: %w", name, apperrors.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (models.Template, error) {
	var (
		t    models.Template
		data []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &data, &t.CreatedAt); err != nil {
		return models.Template{}, err
	}
	if err := json.Unmarshal(data, &t.Data); err != nil {
		return models.Template{}, fmt.Errorf("failed to decode template %q: %w", t.Name, err)
	}
	return t, nil
}

func (s *Store) GetEntries(ctx context.Context, date string) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx, "SELECT "+entryColumns+" FROM time_entries WHERE date = $1 ORDER BY time_slot", date)
}

func (s *Store) GetEntriesInRange(ctx context.Context, from, to string) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM time_entries WHERE date >= $1 AND date <= $2 ORDER BY date, time_slot",
		from, to,
	)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]models.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, describe(err)
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		var e models.TimeEntry
		if err := rows.Scan(&e.Date, &e.Slot, &e.Block.Plan, &e.Block.Actual, &e.Block.Project, &e.Block.Energy, &e.Block.Distraction); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) UpsertEntries(ctx context.Context, entries []models.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return describe(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO time_entries (`+entryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date, time_slot) DO UPDATE SET
			planned = EXCLUDED.planned,
			actual = EXCLUDED.actual,
			project_tag = EXCLUDED.project_tag,
			energy_level = EXCLUDED.energy_level,
			distraction_reason = EXCLUDED.distraction_reason`)
	if err != nil {
		return describe(err)
	}
	defer stmt.Close()

	for _, e := range entries {
		b := e.Block
		if _, err := stmt.ExecContext(ctx, e.Date, e.Slot, b.Plan, b.Actual, b.Project, b.Energy, b.Distraction); err != nil {
			return fmt.Errorf("failed to upsert entry %s %s: %w", e.Date, e.Slot, describe(err))
		}
	}
	return describe(tx.Commit())
}

func (s *Store) GetReflection(ctx context.Context, date string) (models.Reflection, error) {
	r := models.Reflection{Date: date}
	err := s.db.QueryRowContext(ctx, "SELECT content FROM reflections WHERE date = $1", date).Scan(&r.Content)
	if err == sql.ErrNoRows {
		return models.Reflection{}, fmt.Errorf("reflection for %s: %w", date, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Reflection{}, describe(err)
	}
	return r, nil
}

func (s *Store) GetReflectionsInRange(ctx context.Context, from, to string) ([]models.Reflection, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date, content FROM reflections WHERE date >= $1 AND date <= $2 ORDER BY date", from, to)
	if err != nil {
		return nil, describe(err)
	}
	defer rows.Close()

	var out []models.Reflection
	for rows.Next() {
		var r models.Reflection
		if err := rows.Scan(&r.Date, &r.Content); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpsertReflection(ctx context.Context, r models.Reflection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reflections (date, content) VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET content = EXCLUDED.content`,
		r.Date, r.Content,
	)
	return describe(err)
}
