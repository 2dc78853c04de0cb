package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
)

func (s *Store) GetFeature(ctx context.Context, id models.ID) (*models.Feature, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, slug, name, summary, description, status, priority, tags,
		       requires_verification, progress_pct, created_at, updated_at
		FROM features WHERE id = ?`, id.String())
	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get feature %s: %w", id, err)
	}
	return f, nil
}

func (s *Store) ListFeatures(ctx context.Context, filter store.FeatureFilter) ([]*models.Feature, error) {
	query := `SELECT id, project_id, slug, name, summary, description, status, priority, tags,
	                 requires_verification, progress_pct, created_at, updated_at
	          FROM features WHERE 1=1`
	args := []any{}
	if filter.ProjectID != nil {
		query += " AND project_id = ?"
		args = append(args, filter.ProjectID.String())
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, st)
		}
		query += " AND status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list features: %w", err)
	}
	defer rows.Close()

	out := []*models.Feature{}
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan feature: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) CreateFeature(ctx context.Context, f *models.Feature) error {
	tags, err := json.Marshal(f.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: marshal feature tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO features (id, project_id, slug, name, summary, description, status, priority,
		                       tags, requires_verification, progress_pct, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		f.ID.String(), idPtrString(f.ProjectID), f.Slug, f.Name, f.Summary, f.Description,
		f.Status, f.Priority, string(tags), f.RequiresVerification, f.ProgressPct)
	if err != nil {
		return fmt.Errorf("sqlite: create feature: %w", err)
	}
	return nil
}

func (s *Store) UpdateFeature(ctx context.Context, f *models.Feature) error {
	tags, err := json.Marshal(f.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: marshal feature tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE features SET project_id = ?, slug = ?, name = ?, summary = ?, description = ?,
		       status = ?, priority = ?, tags = ?, requires_verification = ?, progress_pct = ?,
		       updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		idPtrString(f.ProjectID), f.Slug, f.Name, f.Summary, f.Description, f.Status, f.Priority,
		string(tags), f.RequiresVerification, f.ProgressPct, f.ID.String())
	if err != nil {
		return fmt.Errorf("sqlite: update feature %s: %w", f.ID, err)
	}
	return checkRowsAffected(res, store.ErrNotFound)
}

func (s *Store) DeleteFeature(ctx context.Context, id models.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM features WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("sqlite: delete feature %s: %w", id, err)
	}
	return checkRowsAffected(res, store.ErrNotFound)
}

func scanFeature(row rowScanner) (*models.Feature, error) {
	var f models.Feature
	var idStr, tags, priority string
	var projectID, summary, description sql.NullString
	if err := row.Scan(&idStr, &projectID, &f.Slug, &f.Name, &summary, &description, &f.Status,
		&priority, &tags, &f.RequiresVerification, &f.ProgressPct, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	id, err := models.ParseID(idStr)
	if err != nil {
		return nil, err
	}
	f.ID = id
	f.Priority = models.Priority(priority)
	if projectID.Valid {
		pid, err := models.ParseID(projectID.String)
		if err != nil {
			return nil, err
		}
		f.ProjectID = &pid
	}
	if summary.Valid {
		f.Summary = &summary.String
	}
	if description.Valid {
		f.Description = &description.String
	}
	if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return &f, nil
}

func idPtrString(id *models.ID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
