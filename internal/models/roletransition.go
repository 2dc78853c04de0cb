package models

import "time"

// EntityKind names which table a RoleTransition or cascade target
// refers to.
type EntityKind string

const (
	EntityProject EntityKind = "project"
	EntityFeature EntityKind = "feature"
	EntityTask    EntityKind = "task"
)

// RoleTransition is an append-only audit record written each time a
// status change, whether by direct request or by cascade, moves an
// entity into a different role.
type RoleTransition struct {
	ID         ID         `json:"id" db:"id"`
	EntityID   ID         `json:"entity_id" db:"entity_id"`
	EntityKind EntityKind `json:"entity_kind" db:"entity_kind"`
	FromRole   *Role      `json:"from_role,omitempty" db:"from_role"`
	ToRole     Role       `json:"to_role" db:"to_role"`
	FromStatus *string    `json:"from_status,omitempty" db:"from_status"`
	ToStatus   string     `json:"to_status" db:"to_status"`
	Trigger    string     `json:"trigger" db:"trigger"`
	Summary    *string    `json:"summary,omitempty" db:"summary"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
}

// Validate validates the structural fields of a RoleTransition.
func (rt *RoleTransition) Validate() error {
	if err := ValidateID(rt.ID); err != nil {
		return err
	}
	if err := ValidateID(rt.EntityID); err != nil {
		return err
	}
	if rt.ToStatus == "" {
		return ErrEmptyStatus
	}
	if !ValidRole(rt.ToRole) {
		return ErrInvalidUnblockAt
	}
	return nil
}
