package cascade

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
)

// CleanupResult reports the outcome of completion cleanup: tasks
// automatically removed because they carried no user-authored content,
// and tasks retained (reported, never touched) because they did.
type CleanupResult struct {
	Removed  []models.ID
	Retained []models.ID
}

// runCleanup implements completion cleanup: when a feature reaches a
// terminal role, any non-terminal child with no summary, no recorded
// role transitions, and no content is eligible for automatic removal.
// Everything else is left alone and reported as retained.
func (e *Engine) runCleanup(ctx context.Context, featureID models.ID) (*CleanupResult, error) {
	tasks, err := e.store.ListTasks(ctx, store.TaskFilter{FeatureID: &featureID})
	if err != nil {
		return nil, fmt.Errorf("cascade: listing feature tasks for cleanup: %w", err)
	}

	result := &CleanupResult{}
	for _, t := range tasks {
		if e.resolver.IsTerminal(containerTypeOf(models.EntityTask), t.Status) {
			continue
		}
		eligible, err := e.eligibleForRemoval(ctx, t)
		if err != nil {
			return nil, err
		}
		if eligible {
			if err := e.store.DeleteTask(ctx, t.ID); err != nil {
				return nil, fmt.Errorf("cascade: cleanup deleting task %s: %w", t.ID, err)
			}
			result.Removed = append(result.Removed, t.ID)
		} else {
			result.Retained = append(result.Retained, t.ID)
		}
	}
	return result, nil
}

// eligibleForRemoval reports whether t carries no user-authored
// content: empty summary, no recorded role transitions. Section/note
// content is out of this engine's scope (§6.4), so only these two
// signals gate automatic removal.
func (e *Engine) eligibleForRemoval(ctx context.Context, t *models.Task) (bool, error) {
	if t.Summary != nil && *t.Summary != "" {
		return false, nil
	}
	transitions, err := e.store.ListRoleTransitions(ctx, t.ID)
	if err != nil {
		return false, fmt.Errorf("cascade: loading role transitions for task %s: %w", t.ID, err)
	}
	return len(transitions) == 0, nil
}
