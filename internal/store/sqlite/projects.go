package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
)

func (s *Store) GetProject(ctx context.Context, id models.ID) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, slug, name, summary, status, tags, created_at, updated_at
		FROM projects WHERE id = ?`, id.String())
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get project %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name, summary, status, tags, created_at, updated_at
		FROM projects ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list projects: %w", err)
	}
	defer rows.Close()

	out := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: marshal project tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, slug, name, summary, status, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		p.ID.String(), p.Slug, p.Name, p.Summary, p.Status, string(tags))
	if err != nil {
		return fmt.Errorf("sqlite: create project: %w", err)
	}
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p *models.Project) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: marshal project tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET slug = ?, name = ?, summary = ?, status = ?, tags = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, p.Slug, p.Name, p.Summary, p.Status, string(tags), p.ID.String())
	if err != nil {
		return fmt.Errorf("sqlite: update project %s: %w", p.ID, err)
	}
	return checkRowsAffected(res, store.ErrNotFound)
}

func (s *Store) DeleteProject(ctx context.Context, id models.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("sqlite: delete project %s: %w", id, err)
	}
	return checkRowsAffected(res, store.ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var idStr, tags string
	var summary sql.NullString
	if err := row.Scan(&idStr, &p.Slug, &p.Name, &summary, &p.Status, &tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	id, err := models.ParseID(idStr)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if summary.Valid {
		p.Summary = &summary.String
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return &p, nil
}

func checkRowsAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
