// Package cascade implements the cascade engine (C6): after a status
// write commits, it detects knock-on transitions on the entity's
// parent (or, for self-advancing features, the entity itself) and
// re-applies them recursively up to a depth cap.
package cascade

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/dependency"
	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/prereq"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// Node is one entry in the cascade result tree, returned to the caller
// unmodified.
type Node struct {
	Event          string
	TargetType     models.EntityKind
	TargetID       models.ID
	PreviousStatus string
	NewStatus      string
	Applied        bool
	Reason         string
	Error          string
	Cleanup        *CleanupResult
	UnblockedTasks []models.ID
	ChildCascades  []*Node
}

// Engine is the cascade engine (C6).
type Engine struct {
	store     store.Store
	resolver  *flow.Resolver
	validator *prereq.Validator
	cfg       *workflowconfig.WorkflowConfig
}

// New constructs an Engine bound to a loaded config snapshot, its
// entity store, and the validator cascades delegate transition
// legality to.
func New(cfg *workflowconfig.WorkflowConfig, s store.Store, validator *prereq.Validator) *Engine {
	return &Engine{store: s, resolver: flow.New(cfg), validator: validator, cfg: cfg}
}

// MaxDepth returns the configured cascade depth cap.
func (e *Engine) MaxDepth() int {
	if e.cfg.AutoCascade.MaxDepth > 0 {
		return e.cfg.AutoCascade.MaxDepth
	}
	return workflowconfig.DefaultMaxCascadeDepth
}

// Apply runs applyCascades for the entity that just had its status
// written: it detects candidate cascade events, applies each one it
// can, and recurses on the targets it actually moved. Depth is hard
// capped; beyond the cap the pass stops silently and the caller's
// original write is unaffected.
func (e *Engine) Apply(ctx context.Context, entityType models.EntityKind, entityID models.ID, depth, maxDepth int) ([]*Node, error) {
	if !e.cfg.AutoCascade.Enabled {
		return nil, nil
	}
	if depth >= maxDepth {
		return nil, nil
	}

	candidates, err := e.detectEvents(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(candidates))
	for _, cand := range candidates {
		node, err := e.applyOne(ctx, cand)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		nodes = append(nodes, node)
		if node.Applied {
			children, err := e.Apply(ctx, node.TargetType, node.TargetID, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			node.ChildCascades = children
		}
	}
	return nodes, nil
}

// applyOne re-fetches the target's live status, skips if it already
// matches the proposal, validates the transition, and persists it.
func (e *Engine) applyOne(ctx context.Context, cand candidateEvent) (*Node, error) {
	current, err := e.currentStatus(ctx, cand.targetType, cand.targetID)
	if err != nil {
		return nil, err
	}
	if current == cand.proposedStatus {
		return nil, nil
	}

	node := &Node{
		Event:          cand.name,
		TargetType:     cand.targetType,
		TargetID:       cand.targetID,
		PreviousStatus: current,
		NewStatus:      cand.proposedStatus,
	}

	containerType := containerTypeOf(cand.targetType)
	res, err := e.validator.Validate(ctx, prereq.Request{
		ContainerType: containerType,
		EntityID:      &cand.targetID,
		Tags:          cand.tags,
		CurrentStatus: current,
		NewStatus:     cand.proposedStatus,
		Manual:        false,
	})
	if err != nil {
		return nil, err
	}
	if res.Outcome == prereq.Invalid {
		node.Applied = false
		node.Reason = res.Reason
		return node, nil
	}

	if err := e.persist(ctx, cand.targetType, cand.targetID, current, cand.proposedStatus, cand.name); err != nil {
		node.Error = err.Error()
		return node, nil
	}
	node.Applied = true

	newRole := e.resolver.Role(containerType, cand.tags, cand.proposedStatus)
	if newRole == models.RoleTerminal && cand.targetType == models.EntityFeature {
		cleanup, err := e.runCleanup(ctx, cand.targetID)
		if err != nil {
			return nil, err
		}
		node.Cleanup = cleanup
	}
	if newRole == models.RoleTerminal && cand.targetType == models.EntityTask {
		unblocked, err := dependency.NewlyUnblocked(ctx, e.store, e.resolver, cand.targetID)
		if err != nil {
			return nil, err
		}
		for _, t := range unblocked {
			node.UnblockedTasks = append(node.UnblockedTasks, t.ID)
		}
	}

	return node, nil
}

func (e *Engine) persist(ctx context.Context, entityType models.EntityKind, id models.ID, fromStatus, toStatus, trigger string) error {
	containerType := containerTypeOf(entityType)
	fromRole := e.resolver.Role(containerType, nil, fromStatus)
	toRole := e.resolver.Role(containerType, nil, toStatus)

	switch entityType {
	case models.EntityTask:
		t, err := e.store.GetTask(ctx, id)
		if err != nil {
			return err
		}
		t.Status = toStatus
		if err := e.store.UpdateTask(ctx, t); err != nil {
			return err
		}
	case models.EntityFeature:
		f, err := e.store.GetFeature(ctx, id)
		if err != nil {
			return err
		}
		f.Status = toStatus
		if err := e.store.UpdateFeature(ctx, f); err != nil {
			return err
		}
	case models.EntityProject:
		p, err := e.store.GetProject(ctx, id)
		if err != nil {
			return err
		}
		p.Status = toStatus
		if err := e.store.UpdateProject(ctx, p); err != nil {
			return err
		}
	}

	if fromRole != toRole {
		fr := fromRole
		fs := fromStatus
		return e.store.AppendRoleTransition(ctx, &models.RoleTransition{
			ID:         models.NewID(),
			EntityID:   id,
			EntityKind: entityType,
			FromRole:   &fr,
			ToRole:     toRole,
			FromStatus: &fs,
			ToStatus:   toStatus,
			Trigger:    trigger,
		})
	}
	return nil
}

func (e *Engine) currentStatus(ctx context.Context, entityType models.EntityKind, id models.ID) (string, error) {
	switch entityType {
	case models.EntityTask:
		t, err := e.store.GetTask(ctx, id)
		if err != nil {
			return "", fmt.Errorf("cascade: loading task %s: %w", id, err)
		}
		return t.Status, nil
	case models.EntityFeature:
		f, err := e.store.GetFeature(ctx, id)
		if err != nil {
			return "", fmt.Errorf("cascade: loading feature %s: %w", id, err)
		}
		return f.Status, nil
	case models.EntityProject:
		p, err := e.store.GetProject(ctx, id)
		if err != nil {
			return "", fmt.Errorf("cascade: loading project %s: %w", id, err)
		}
		return p.Status, nil
	default:
		return "", fmt.Errorf("cascade: unknown entity kind %q", entityType)
	}
}

func containerTypeOf(k models.EntityKind) workflowconfig.ContainerType {
	switch k {
	case models.EntityTask:
		return workflowconfig.ContainerTask
	case models.EntityFeature:
		return workflowconfig.ContainerFeature
	default:
		return workflowconfig.ContainerProject
	}
}
