package sqlite

import (
	"context"
	"fmt"
)

func (s *Store) GetProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM projects ORDER BY rowid")
	if err != nil {
		return nil, err
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
	if len(names) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO projects (name) VALUES (?) ON CONFLICT (name) DO NOTHING")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range names {
		if name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("failed to upsert project %q: %w", name, err)
		}
	}
	return tx.Commit()
}
