package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/models"
)

const entryColumns = "date, time_slot, planned, actual, project_tag, energy_level, distraction_reason"

func (s *Store) GetEntries(ctx context.Context, date string) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx, "SELECT "+entryColumns+" FROM time_entries WHERE date = ? ORDER BY time_slot", date)
}

func (s *Store) GetEntriesInRange(ctx context.Context, from, to string) ([]models.TimeEntry, error) {
	return s.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM time_entries WHERE date >= ? AND date <= ? ORDER BY date, time_slot",
		from, to,
	)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]models.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
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
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO time_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date, time_slot) DO UPDATE SET
			planned = excluded.planned,
			actual = excluded.actual,
			project_tag = excluded.project_tag,
			energy_level = excluded.energy_level,
			distraction_reason = excluded.distraction_reason`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		b := e.Block
		if _, err := stmt.ExecContext(ctx, e.Date, e.Slot, b.Plan, b.Actual, b.Project, b.Energy, b.Distraction); err != nil {
			return fmt.Errorf("failed to upsert entry %s %s: %w", e.Date, e.Slot, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetReflection(ctx context.Context, date string) (models.Reflection, error) {
	r := models.Reflection{Date: date}
	err := s.db.QueryRowContext(ctx, "SELECT content FROM reflections WHERE date = ?", date).Scan(&r.Content)
	if err == sql.ErrNoRows {
		return models.Reflection{}, fmt.Errorf("reflection for %s: %w", date, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Reflection{}, err
	}
	return r, nil
}

func (s *Store) GetReflectionsInRange(ctx context.Context, from, to string) ([]models.Reflection, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date, content FROM reflections WHERE date >= ? AND date <= ? ORDER BY date", from, to)
	if err != nil {
		return nil, err
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
		INSERT INTO reflections (date, content) VALUES (?, ?)
		ON CONFLICT (date) DO UPDATE SET content = excluded.content`,
		r.Date, r.Content,
	)
	return err
}
