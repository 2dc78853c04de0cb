package models

import "time"

// RelationshipKind is the type of edge a Dependency represents between
// two tasks. Only Blocks/IsBlockedBy edges participate in cycle
// detection and the blocked-set computation; RelatesTo is informational
// only and is ignored by every blocking/cascade/readiness calculation.
type RelationshipKind string

const (
	RelationshipBlocks      RelationshipKind = "BLOCKS"
	RelationshipIsBlockedBy RelationshipKind = "IS_BLOCKED_BY"
	RelationshipRelatesTo   RelationshipKind = "RELATES_TO"
)

// Dependency is a directed, typed edge between two tasks, with an
// optional unblockAt threshold: the minimum role the blocker must reach
// before the blocked endpoint is released. The zero value of UnblockAt
// means "unset", which resolves to RoleTerminal.
type Dependency struct {
	ID        ID               `json:"id" db:"id"`
	FromTask  ID               `json:"from_task_id" db:"from_task_id"`
	ToTask    ID               `json:"to_task_id" db:"to_task_id"`
	Kind      RelationshipKind `json:"kind" db:"kind"`
	UnblockAt Role             `json:"unblock_at,omitempty" db:"unblock_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// DefaultUnblockAt is the threshold applied when UnblockAt is unset.
const DefaultUnblockAt = RoleTerminal

// EffectiveUnblockAt returns the edge's threshold, defaulting to
// RoleTerminal when unset.
func (d *Dependency) EffectiveUnblockAt() Role {
	if d.UnblockAt == "" {
		return DefaultUnblockAt
	}
	return d.UnblockAt
}

// Validate validates the structural fields of a Dependency.
func (d *Dependency) Validate() error {
	if err := ValidateID(d.ID); err != nil {
		return err
	}
	if err := ValidateID(d.FromTask); err != nil {
		return err
	}
	if err := ValidateID(d.ToTask); err != nil {
		return err
	}
	if d.FromTask == d.ToTask {
		return ErrSelfDependency
	}
	if err := ValidateRelationshipKind(d.Kind); err != nil {
		return err
	}
	if err := ValidateUnblockAt(d.UnblockAt); err != nil {
		return err
	}
	return nil
}
