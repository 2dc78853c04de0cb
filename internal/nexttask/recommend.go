// Package nexttask implements the next-task recommendation half of C7:
// sorting unblocked queue-role tasks by priority, complexity, and
// creation order so the caller always gets the cheapest unblocked win
// first.
package nexttask

import (
	"context"
	"fmt"
	"sort"

	"github.com/vantage-labs/orcaflow/internal/dependency"
	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// MinLimit, DefaultLimit and MaxLimit bound the limit parameter
// accepted by Recommend.
const (
	MinLimit     = 1
	DefaultLimit = 1
	MaxLimit     = 20
)

// ErrInvalidLimit is returned when limit falls outside [MinLimit, MaxLimit].
type ErrInvalidLimit struct{ Limit int }

func (e ErrInvalidLimit) Error() string {
	return fmt.Sprintf("limit must be between %d and %d, got %d", MinLimit, MaxLimit, e.Limit)
}

// Recommend implements the next-task recommendation query: collect
// queue-role tasks matching filter, drop blocked ones, and return the
// top `limit` sorted by (priority ascending, complexity ascending,
// createdAt ascending).
func Recommend(ctx context.Context, s store.Store, resolver *flow.Resolver, filter store.TaskFilter, limit int) ([]*models.Task, int, error) {
	if limit < MinLimit || limit > MaxLimit {
		return nil, 0, ErrInvalidLimit{Limit: limit}
	}

	candidates, err := s.ListTasks(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("nexttask: listing candidates: %w", err)
	}

	queued := make([]*models.Task, 0, len(candidates))
	for _, t := range candidates {
		if resolver.Role(workflowconfig.ContainerTask, nil, t.Status) != models.RoleQueue {
			continue
		}
		blocked, _, err := dependency.IsBlocked(ctx, s, resolver, t)
		if err != nil {
			return nil, 0, err
		}
		if !blocked {
			queued = append(queued, t)
		}
	}

	sort.SliceStable(queued, func(i, j int) bool {
		a, b := queued[i], queued[j]
		if pa, pb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); pa != pb {
			return pa < pb
		}
		ca, cb := complexityOf(a), complexityOf(b)
		if ca != cb {
			return ca < cb
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	total := len(queued)
	if limit < total {
		queued = queued[:limit]
	}
	return queued, total, nil
}

// complexityOf treats an unset complexity as maximal, so tasks without
// an estimate sort after every estimated task at the same priority.
func complexityOf(t *models.Task) int {
	if t.Complexity == nil {
		return 1 << 30
	}
	return *t.Complexity
}
