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

func (s *Store) GetTask(ctx context.Context, id models.ID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, feature_id, slug, title, description, status, priority, complexity, summary,
		       tags, assigned_agent, blocked_reason, created_at, started_at, completed_at,
		       blocked_at, updated_at, completion_metadata, context_data
		FROM tasks WHERE id = ?`, id.String())
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get task %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*models.Task, error) {
	query := `SELECT tasks.id, tasks.feature_id, tasks.slug, tasks.title, tasks.description,
	                 tasks.status, tasks.priority, tasks.complexity, tasks.summary, tasks.tags,
	                 tasks.assigned_agent, tasks.blocked_reason, tasks.created_at, tasks.started_at,
	                 tasks.completed_at, tasks.blocked_at, tasks.updated_at,
	                 tasks.completion_metadata, tasks.context_data
	          FROM tasks`
	args := []any{}
	where := []string{}
	if filter.ProjectID != nil {
		query += " JOIN features ON features.id = tasks.feature_id"
		where = append(where, "features.project_id = ?")
		args = append(args, filter.ProjectID.String())
	}
	if filter.FeatureID != nil {
		where = append(where, "tasks.feature_id = ?")
		args = append(args, filter.FeatureID.String())
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, st)
		}
		where = append(where, "tasks.status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY tasks.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tasks: %w", err)
	}
	defer rows.Close()

	out := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	tags, completion, contextData, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, feature_id, slug, title, description, status, priority, complexity,
		                    summary, tags, assigned_agent, blocked_reason, created_at, started_at,
		                    completed_at, blocked_at, updated_at, completion_metadata, context_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?, ?, ?, CURRENT_TIMESTAMP, ?, ?)`,
		t.ID.String(), idPtrString(t.FeatureID), t.Slug, t.Title, t.Description, t.Status,
		t.Priority, t.Complexity, t.Summary, tags, t.AssignedAgent, t.BlockedReason,
		t.StartedAt, t.CompletedAt, t.BlockedAt, completion, contextData)
	if err != nil {
		return fmt.Errorf("sqlite: create task: %w", err)
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	tags, completion, contextData, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET feature_id = ?, slug = ?, title = ?, description = ?, status = ?,
		       priority = ?, complexity = ?, summary = ?, tags = ?, assigned_agent = ?,
		       blocked_reason = ?, started_at = ?, completed_at = ?, blocked_at = ?,
		       updated_at = CURRENT_TIMESTAMP, completion_metadata = ?, context_data = ?
		WHERE id = ?`,
		idPtrString(t.FeatureID), t.Slug, t.Title, t.Description, t.Status, t.Priority,
		t.Complexity, t.Summary, tags, t.AssignedAgent, t.BlockedReason, t.StartedAt,
		t.CompletedAt, t.BlockedAt, completion, contextData, t.ID.String())
	if err != nil {
		return fmt.Errorf("sqlite: update task %s: %w", t.ID, err)
	}
	return checkRowsAffected(res, store.ErrNotFound)
}

func (s *Store) DeleteTask(ctx context.Context, id models.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("sqlite: delete task %s: %w", id, err)
	}
	return checkRowsAffected(res, store.ErrNotFound)
}

func marshalTaskJSON(t *models.Task) (tags string, completion, contextData any, err error) {
	tagBytes, err := json.Marshal(t.Tags)
	if err != nil {
		return "", nil, nil, fmt.Errorf("sqlite: marshal task tags: %w", err)
	}
	if t.CompletionMetadata != nil {
		b, err := json.Marshal(t.CompletionMetadata)
		if err != nil {
			return "", nil, nil, fmt.Errorf("sqlite: marshal completion metadata: %w", err)
		}
		completion = string(b)
	}
	if t.ContextData != nil {
		b, err := json.Marshal(t.ContextData)
		if err != nil {
			return "", nil, nil, fmt.Errorf("sqlite: marshal context data: %w", err)
		}
		contextData = string(b)
	}
	return string(tagBytes), completion, contextData, nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var idStr, tags, priority string
	var featureID, description, summary, assignedAgent, blockedReason sql.NullString
	var completion, contextData sql.NullString
	var startedAt, completedAt, blockedAt sql.NullTime
	var complexity sql.NullInt64

	if err := row.Scan(&idStr, &featureID, &t.Slug, &t.Title, &description, &t.Status, &priority,
		&complexity, &summary, &tags, &assignedAgent, &blockedReason, &t.CreatedAt, &startedAt,
		&completedAt, &blockedAt, &t.UpdatedAt, &completion, &contextData); err != nil {
		return nil, err
	}

	id, err := models.ParseID(idStr)
	if err != nil {
		return nil, err
	}
	t.ID = id
	t.Priority = models.Priority(priority)

	if featureID.Valid {
		fid, err := models.ParseID(featureID.String)
		if err != nil {
			return nil, err
		}
		t.FeatureID = &fid
	}
	if description.Valid {
		t.Description = &description.String
	}
	if summary.Valid {
		t.Summary = &summary.String
	}
	if assignedAgent.Valid {
		t.AssignedAgent = &assignedAgent.String
	}
	if blockedReason.Valid {
		t.BlockedReason = &blockedReason.String
	}
	if complexity.Valid {
		v := int(complexity.Int64)
		t.Complexity = &v
	}
	if startedAt.Valid {
		t.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if blockedAt.Valid {
		t.BlockedAt = &blockedAt.Time
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if completion.Valid {
		var cm models.CompletionMetadata
		if err := json.Unmarshal([]byte(completion.String), &cm); err != nil {
			return nil, fmt.Errorf("unmarshal completion metadata: %w", err)
		}
		t.CompletionMetadata = &cm
	}
	if contextData.Valid {
		var cd models.ContextData
		if err := json.Unmarshal([]byte(contextData.String), &cd); err != nil {
			return nil, fmt.Errorf("unmarshal context data: %w", err)
		}
		t.ContextData = &cd
	}
	return &t, nil
}
