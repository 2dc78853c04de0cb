package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
)

func (s *Store) CreateDependency(ctx context.Context, d *models.Dependency) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dependencies (id, from_task_id, to_task_id, kind, unblock_at, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		d.ID.String(), d.FromTask.String(), d.ToTask.String(), d.Kind, nullableRole(d.UnblockAt))
	if err != nil {
		return fmt.Errorf("sqlite: create dependency: %w", err)
	}
	return nil
}

func (s *Store) DeleteDependency(ctx context.Context, id models.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("sqlite: delete dependency %s: %w", id, err)
	}
	return checkRowsAffected(res, store.ErrNotFound)
}

func (s *Store) ListDependencies(ctx context.Context, taskID models.ID, direction store.EdgeDirection) ([]*models.Dependency, error) {
	return s.queryDependencies(ctx, taskID, direction, false)
}

func (s *Store) FindBlockingEdges(ctx context.Context, taskID models.ID, direction store.EdgeDirection) ([]*models.Dependency, error) {
	return s.queryDependencies(ctx, taskID, direction, true)
}

func (s *Store) queryDependencies(ctx context.Context, taskID models.ID, direction store.EdgeDirection, blockingOnly bool) ([]*models.Dependency, error) {
	query := `SELECT id, from_task_id, to_task_id, kind, unblock_at, created_at FROM dependencies WHERE `
	var cond string
	switch direction {
	case store.DirectionIncoming:
		cond = "to_task_id = ?"
	case store.DirectionOutgoing:
		cond = "from_task_id = ?"
	default:
		cond = "(from_task_id = ? OR to_task_id = ?)"
	}
	query += cond
	args := []any{taskID.String()}
	if direction == store.DirectionBoth {
		args = append(args, taskID.String())
	}
	if blockingOnly {
		query += " AND kind IN ('BLOCKS', 'IS_BLOCKED_BY')"
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query dependencies: %w", err)
	}
	defer rows.Close()

	out := []*models.Dependency{}
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan dependency: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullableRole(r models.Role) any {
	if r == "" {
		return nil
	}
	return string(r)
}

func scanDependency(row rowScanner) (*models.Dependency, error) {
	var d models.Dependency
	var idStr, fromStr, toStr, kind string
	var unblockAt sql.NullString
	if err := row.Scan(&idStr, &fromStr, &toStr, &kind, &unblockAt, &d.CreatedAt); err != nil {
		return nil, err
	}
	id, err := models.ParseID(idStr)
	if err != nil {
		return nil, err
	}
	from, err := models.ParseID(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := models.ParseID(toStr)
	if err != nil {
		return nil, err
	}
	d.ID = id
	d.FromTask = from
	d.ToTask = to
	d.Kind = models.RelationshipKind(kind)
	if unblockAt.Valid {
		d.UnblockAt = models.Role(unblockAt.String)
	}
	return &d, nil
}
