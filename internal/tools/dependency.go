package tools

import (
	"context"
	"errors"

	"github.com/vantage-labs/orcaflow/internal/apperr"
	"github.com/vantage-labs/orcaflow/internal/dependency"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
)

// ManageDependencyParams bundles manageDependency's fields across its
// three operations.
type ManageDependencyParams struct {
	Op        string `json:"op"`
	ID        string `json:"id,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Kind      string `json:"type,omitempty"`
	UnblockAt string `json:"unblockAt,omitempty"`
}

// ManageDependency is the dependency write/list entry point: create
// runs the cycle check before any store mutation, per the spec's
// "check before any INSERT" requirement.
func (s *Service) ManageDependency(ctx context.Context, p ManageDependencyParams) *Envelope {
	switch p.Op {
	case "create":
		return s.createDependency(ctx, p)
	case "delete":
		return s.deleteDependency(ctx, p)
	case "list":
		return s.listDependencies(ctx, p)
	default:
		return Fail(apperr.Validation("unknown op %q: must be create, delete, or list", p.Op))
	}
}

func (s *Service) createDependency(ctx context.Context, p ManageDependencyParams) *Envelope {
	from, err := parseID("from", p.From)
	if err != nil {
		return Fail(err)
	}
	to, err := parseID("to", p.To)
	if err != nil {
		return Fail(err)
	}
	kind := models.RelationshipKind(p.Kind)
	if err := models.ValidateRelationshipKind(kind); err != nil {
		return Fail(apperr.Validation("%v", err))
	}
	unblockAt := models.Role(p.UnblockAt)
	if err := models.ValidateUnblockAt(unblockAt); err != nil {
		return Fail(apperr.Validation("%v", err))
	}

	dep := &models.Dependency{
		ID: models.NewID(), FromTask: from, ToTask: to, Kind: kind, UnblockAt: unblockAt,
	}
	if err := dep.Validate(); err != nil {
		return Fail(apperr.Validation("%v", err))
	}

	// The duplicate check, cycle check, and insert run in one
	// transaction so a concurrent create can't slip a matching edge or
	// a cycle-inducing edge in between the checks and the write.
	txErr := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		existing, err := tx.ListDependencies(ctx, from, store.DirectionOutgoing)
		if err != nil {
			return apperr.Store(err)
		}
		for _, e := range existing {
			if e.ToTask == to && e.Kind == kind {
				return apperr.Validation("a %s dependency from %s to %s already exists", kind, from, to)
			}
		}

		if err := dependency.CheckCycle(ctx, tx, from, to, kind); err != nil {
			var cycleErr *dependency.CycleError
			if errors.As(err, &cycleErr) {
				return apperr.CycleDetected(cycleErr.Path)
			}
			return apperr.Internal(err)
		}

		if err := tx.CreateDependency(ctx, dep); err != nil {
			return apperr.Store(err)
		}
		return nil
	})
	if txErr != nil {
		return Fail(txErr)
	}
	return Ok("dependency created", dep)
}

func (s *Service) deleteDependency(ctx context.Context, p ManageDependencyParams) *Envelope {
	id, err := parseID("id", p.ID)
	if err != nil {
		return Fail(err)
	}
	if err := s.store.DeleteDependency(ctx, id); err != nil {
		return Fail(apperr.Store(err))
	}
	return Ok("dependency deleted", nil)
}

func (s *Service) listDependencies(ctx context.Context, p ManageDependencyParams) *Envelope {
	taskID, err := parseID("from", p.From)
	if err != nil {
		return Fail(err)
	}
	deps, err := s.store.ListDependencies(ctx, taskID, store.DirectionBoth)
	if err != nil {
		return Fail(apperr.Store(err))
	}
	return Ok("ok", deps)
}

// QueryDependenciesParams bundles queryDependencies' fields.
type QueryDependenciesParams struct {
	TaskID          string `json:"taskId"`
	Direction       string `json:"direction,omitempty"`
	IncludeTaskInfo bool   `json:"includeTaskInfo,omitempty"`
}

// dependencyEdgeView is one row of the queryDependencies response,
// optionally enriched with the counterpart task's summary fields when
// IncludeTaskInfo is set.
type dependencyEdgeView struct {
	*models.Dependency
	CounterpartTask *models.Task `json:"counterpartTask,omitempty"`
}

// QueryDependencies lists the edges a task participates in, filtered
// by direction, optionally enriched with the counterpart task.
func (s *Service) QueryDependencies(ctx context.Context, p QueryDependenciesParams) *Envelope {
	taskID, err := parseID("taskId", p.TaskID)
	if err != nil {
		return Fail(err)
	}

	dir := store.DirectionBoth
	switch p.Direction {
	case "", "both":
		dir = store.DirectionBoth
	case "incoming":
		dir = store.DirectionIncoming
	case "outgoing":
		dir = store.DirectionOutgoing
	default:
		return Fail(apperr.Validation("direction must be incoming, outgoing, or both, got %q", p.Direction))
	}

	edges, err := s.store.ListDependencies(ctx, taskID, dir)
	if err != nil {
		return Fail(apperr.Store(err))
	}

	views := make([]dependencyEdgeView, 0, len(edges))
	for _, e := range edges {
		v := dependencyEdgeView{Dependency: e}
		if p.IncludeTaskInfo {
			counterpart := e.ToTask
			if counterpart == taskID {
				counterpart = e.FromTask
			}
			t, err := s.store.GetTask(ctx, counterpart)
			if err == nil {
				v.CounterpartTask = t
			}
		}
		views = append(views, v)
	}
	return Ok("ok", views)
}

// GetBlockedParams bundles getBlocked's filter fields.
type GetBlockedParams struct {
	ProjectID *string `json:"projectId,omitempty"`
	FeatureID *string `json:"featureId,omitempty"`
	Detail    bool    `json:"detail,omitempty"`
}

// blockedView is one entry in the getBlocked response.
type blockedView struct {
	Task     *models.Task               `json:"task"`
	Blockers []dependency.BlockerInfo `json:"blockers"`
}

// GetBlocked implements the C7 blocked-task query.
func (s *Service) GetBlocked(ctx context.Context, p GetBlockedParams) *Envelope {
	filter, err := taskFilterOf(p.ProjectID, p.FeatureID, nil)
	if err != nil {
		return Fail(err)
	}
	records, err := dependency.ComputeBlocked(ctx, s.store, s.resolver, filter)
	if err != nil {
		return Fail(apperr.Internal(err))
	}
	views := make([]blockedView, 0, len(records))
	for _, r := range records {
		views = append(views, blockedView{Task: r.Task, Blockers: r.Blockers})
	}
	return Ok("ok", views)
}

func taskFilterOf(projectID, featureID *string, statuses []string) (store.TaskFilter, error) {
	filter := store.TaskFilter{Statuses: statuses}
	if projectID != nil {
		id, err := parseID("projectId", *projectID)
		if err != nil {
			return filter, err
		}
		filter.ProjectID = &id
	}
	if featureID != nil {
		id, err := parseID("featureId", *featureID)
		if err != nil {
			return filter, err
		}
		filter.FeatureID = &id
	}
	return filter, nil
}
