package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/models"
)

func (s *Store) AppendRoleTransition(ctx context.Context, rt *models.RoleTransition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO role_transitions (id, entity_id, entity_kind, from_role, to_role, from_status,
		                               to_status, trigger, summary, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		rt.ID.String(), rt.EntityID.String(), rt.EntityKind, nullableRole(derefRole(rt.FromRole)),
		rt.ToRole, rt.FromStatus, rt.ToStatus, rt.Trigger, rt.Summary)
	if err != nil {
		return fmt.Errorf("sqlite: append role transition: %w", err)
	}
	return nil
}

func (s *Store) ListRoleTransitions(ctx context.Context, entityID models.ID) ([]*models.RoleTransition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_id, entity_kind, from_role, to_role, from_status, to_status, trigger,
		       summary, timestamp
		FROM role_transitions WHERE entity_id = ? ORDER BY timestamp ASC`, entityID.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: list role transitions: %w", err)
	}
	defer rows.Close()

	out := []*models.RoleTransition{}
	for rows.Next() {
		rt, err := scanRoleTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan role transition: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func derefRole(r *models.Role) models.Role {
	if r == nil {
		return ""
	}
	return *r
}

func scanRoleTransition(row rowScanner) (*models.RoleTransition, error) {
	var rt models.RoleTransition
	var idStr, entityIDStr, entityKind, toRole string
	var fromRole, fromStatus, summary sql.NullString
	if err := row.Scan(&idStr, &entityIDStr, &entityKind, &fromRole, &toRole, &fromStatus,
		&rt.ToStatus, &rt.Trigger, &summary, &rt.Timestamp); err != nil {
		return nil, err
	}
	id, err := models.ParseID(idStr)
	if err != nil {
		return nil, err
	}
	entityID, err := models.ParseID(entityIDStr)
	if err != nil {
		return nil, err
	}
	rt.ID = id
	rt.EntityID = entityID
	rt.EntityKind = models.EntityKind(entityKind)
	rt.ToRole = models.Role(toRole)
	if fromRole.Valid {
		r := models.Role(fromRole.String)
		rt.FromRole = &r
	}
	if fromStatus.Valid {
		rt.FromStatus = &fromStatus.String
	}
	if summary.Valid {
		rt.Summary = &summary.String
	}
	return &rt, nil
}
