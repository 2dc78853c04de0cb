// Package dependency implements the dependency-graph half of the
// dependency & next-task services (C7): cycle detection on creation,
// the blocked-task query, and the newly-unblocked set computed after a
// task reaches a terminal role.
package dependency

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// CycleError reports that a proposed dependency edge would close a
// cycle in the BLOCKS/IS_BLOCKED_BY graph, naming the path that proves
// it.
type CycleError struct {
	Path []models.ID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected: %v", e.Path)
}

// logicalEdge returns the direction a (from, to, kind) edge implies in
// "this blocks that" terms: for BLOCKS, from blocks to; for
// IS_BLOCKED_BY, to blocks from. RELATES_TO never participates in cycle
// detection.
func logicalEdge(from, to models.ID, kind models.RelationshipKind) (blockerNode, blockedNode models.ID) {
	if kind == models.RelationshipIsBlockedBy {
		return to, from
	}
	return from, to
}

// neighbors returns the nodes that node logically blocks, discovered
// lazily from the store one node at a time — each call is a potential
// suspension point, never a full-graph load.
func neighbors(ctx context.Context, s store.Store, node models.ID) ([]models.ID, error) {
	out := []models.ID{}

	outgoing, err := s.ListDependencies(ctx, node, store.DirectionOutgoing)
	if err != nil {
		return nil, err
	}
	for _, e := range outgoing {
		if e.Kind == models.RelationshipBlocks {
			out = append(out, e.ToTask)
		}
	}

	incoming, err := s.ListDependencies(ctx, node, store.DirectionIncoming)
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

// CheckCycle validates that creating the proposed (from, to, kind) edge
// would not close a cycle in the blocking subgraph. It performs a DFS
// starting from the edge's logical blocked endpoint, looking for the
// edge's logical blocker endpoint; if reachable, the new edge would
// close a loop.
func CheckCycle(ctx context.Context, s store.Store, from, to models.ID, kind models.RelationshipKind) error {
	if kind == models.RelationshipRelatesTo {
		return nil
	}
	blocker, blocked := logicalEdge(from, to, kind)
	if blocker == blocked {
		return &CycleError{Path: []models.ID{blocker}}
	}

	visiting := map[models.ID]bool{}
	visited := map[models.ID]bool{}
	path := []models.ID{}

	found, cyclePath, err := dfs(ctx, s, blocked, blocker, visiting, visited, &path)
	if err != nil {
		return err
	}
	if found {
		return &CycleError{Path: append(cyclePath, blocker)}
	}
	return nil
}

func dfs(ctx context.Context, s store.Store, node, target models.ID, visiting, visited map[models.ID]bool, path *[]models.ID) (bool, []models.ID, error) {
	if visited[node] {
		return false, nil, nil
	}
	if node == target {
		return true, append(append([]models.ID{}, (*path)...), node), nil
	}

	visiting[node] = true
	*path = append(*path, node)

	next, err := neighbors(ctx, s, node)
	if err != nil {
		return false, nil, err
	}
	for _, n := range next {
		if visiting[n] {
			continue
		}
		found, cyclePath, err := dfs(ctx, s, n, target, visiting, visited, path)
		if err != nil {
			return false, nil, err
		}
		if found {
			return true, cyclePath, nil
		}
	}

	*path = (*path)[:len(*path)-1]
	visiting[node] = false
	visited[node] = true
	return false, nil, nil
}

// BlockerInfo describes one unsatisfied (or satisfied) blocker on a
// task, enough detail for the getBlocked tool to render without a
// second round trip.
type BlockerInfo struct {
	TaskID models.ID
	Title  string
	Status string
	Role   models.Role
}

// BlockersOf returns the blocking edges a task is on the receiving end
// of: incoming BLOCKS and outgoing IS_BLOCKED_BY. A task's own outgoing
// BLOCKS edges and incoming IS_BLOCKED_BY edges name tasks it blocks,
// not tasks that block it, and must not be treated as gating.
func BlockersOf(ctx context.Context, s store.Store, taskID models.ID) ([]*models.Dependency, []models.ID, error) {
	edges := []*models.Dependency{}
	blockers := []models.ID{}

	incoming, err := s.ListDependencies(ctx, taskID, store.DirectionIncoming)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range incoming {
		if e.Kind == models.RelationshipBlocks {
			edges = append(edges, e)
			blockers = append(blockers, e.FromTask)
		}
	}

	outgoing, err := s.ListDependencies(ctx, taskID, store.DirectionOutgoing)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range outgoing {
		if e.Kind == models.RelationshipIsBlockedBy {
			edges = append(edges, e)
			blockers = append(blockers, e.ToTask)
		}
	}

	return edges, blockers, nil
}

// IsBlocked reports whether task is blocked: at least one of its
// blocking edges has a blocker whose role has not yet reached the
// edge's unblockAt threshold. It also returns the unsatisfied blocker
// details for reporting.
func IsBlocked(ctx context.Context, s store.Store, resolver *flow.Resolver, task *models.Task) (bool, []BlockerInfo, error) {
	edges, blockerIDs, err := BlockersOf(ctx, s, task.ID)
	if err != nil {
		return false, nil, err
	}

	blocked := false
	unsatisfied := []BlockerInfo{}
	for i, e := range edges {
		blocker, err := s.GetTask(ctx, blockerIDs[i])
		if err != nil {
			return false, nil, fmt.Errorf("dependency: loading blocker %s: %w", blockerIDs[i], err)
		}
		role := resolver.Role(workflowconfig.ContainerTask, nil, blocker.Status)
		if !role.AtLeast(e.EffectiveUnblockAt()) {
			blocked = true
			unsatisfied = append(unsatisfied, BlockerInfo{TaskID: blocker.ID, Title: blocker.Title, Status: blocker.Status, Role: role})
		}
	}
	return blocked, unsatisfied, nil
}
