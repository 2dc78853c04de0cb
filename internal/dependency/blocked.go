package dependency

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// BlockedRecord is one entry in the blocked-set query result: a
// non-terminal task together with the blockers currently holding it
// back.
type BlockedRecord struct {
	Task     *models.Task
	Blockers []BlockerInfo
}

// ComputeBlocked implements the blocked-set query: every non-terminal
// task matching filter that has at least one unsatisfied blocking edge.
func ComputeBlocked(ctx context.Context, s store.Store, resolver *flow.Resolver, filter store.TaskFilter) ([]BlockedRecord, error) {
	candidates, err := s.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("dependency: listing candidate tasks: %w", err)
	}

	out := []BlockedRecord{}
	for _, t := range candidates {
		if resolver.Role(workflowconfig.ContainerTask, nil, t.Status) == models.RoleTerminal {
			continue
		}
		blocked, blockers, err := IsBlocked(ctx, s, resolver, t)
		if err != nil {
			return nil, err
		}
		if blocked {
			out = append(out, BlockedRecord{Task: t, Blockers: blockers})
		}
	}
	return out, nil
}

// NewlyUnblocked computes the downstream candidate set released by
// completedTask reaching a terminal role: every task that directly
// depends on it (outgoing BLOCKS, incoming IS_BLOCKED_BY) whose entire
// blocker set is now satisfied and which is itself still non-terminal.
func NewlyUnblocked(ctx context.Context, s store.Store, resolver *flow.Resolver, completedTaskID models.ID) ([]*models.Task, error) {
	downstream, err := downstreamOf(ctx, s, completedTaskID)
	if err != nil {
		return nil, err
	}

	out := []*models.Task{}
	for _, id := range downstream {
		t, err := s.GetTask(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("dependency: loading downstream task %s: %w", id, err)
		}
		if resolver.Role(workflowconfig.ContainerTask, nil, t.Status) == models.RoleTerminal {
			continue
		}
		blocked, _, err := IsBlocked(ctx, s, resolver, t)
		if err != nil {
			return nil, err
		}
		if !blocked {
			out = append(out, t)
		}
	}
	return out, nil
}

// downstreamOf returns the tasks that directly depend on taskID: the
// other end of its outgoing BLOCKS edges and incoming IS_BLOCKED_BY
// edges.
func downstreamOf(ctx context.Context, s store.Store, taskID models.ID) ([]models.ID, error) {
	out := []models.ID{}

	outgoing, err := s.ListDependencies(ctx, taskID, store.DirectionOutgoing)
	if err != nil {
		return nil, err
	}
	for _, e := range outgoing {
		if e.Kind == models.RelationshipBlocks {
			out = append(out, e.ToTask)
		}
	}

	incoming, err := s.ListDependencies(ctx, taskID, store.DirectionIncoming)
	if err != nil {
		return nil, err
	}
	for _, e := range incoming {
		if e.Kind == models.RelationshipIsBlockedBy {
			out = append(out, e.FromTask)
		}
	}

	return out, nil
}
