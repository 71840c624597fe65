package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/models"
)

func (s *Store) GetTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, data, created_at FROM templates ORDER BY name")
	if err != nil {
		return nil, err
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
	row := s.db.QueryRowContext(ctx, "SELECT id, name, data, created_at FROM templates WHERE name = ?", name)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return models.Template{}, fmt.Errorf("template %q: %w", name, apperrors.ErrNotFound)
	}
	return t, err
}

func (s *Store) UpsertTemplates(ctx context.Context, templates ...models.Template) error {
	if len(templates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range templates {
		data, err := json.Marshal(t.Data)
		if err != nil {
			return fmt.Errorf("failed to encode template %q: %w", t.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO templates (id, name, data, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET
				data = excluded.data,
				created_at = excluded.created_at`,
			t.ID, t.Name, string(data), t.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert template %q: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteTemplate(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE name = ?", name)
	if err != nil {
		return err
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
		t         models.Template
		data      string
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.Name, &data, &createdAt); err != nil {
		return models.Template{}, err
	}
	if err := json.Unmarshal([]byte(data), &t.Data); err != nil {
		return models.Template{}, fmt.Errorf("failed to decode template %q: %w", t.Name, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Template{}, fmt.Errorf("invalid created_at for template %q: %w", t.Name, err)
	}
	t.CreatedAt = ts
	return t, nil
}
