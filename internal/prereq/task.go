package prereq

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/dependency"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func (v *Validator) validateTask(ctx context.Context, taskID *models.ID, currentStatus, newStatus string) (*Result, error) {
	if taskID == nil {
		return valid(), nil
	}

	newRole := v.resolver.Role(workflowconfig.ContainerTask, nil, newStatus)
	currentRole := v.resolver.Role(workflowconfig.ContainerTask, nil, currentStatus)

	if newRole == models.RoleTerminal {
		task, err := v.store.GetTask(ctx, *taskID)
		if err != nil {
			return nil, fmt.Errorf("prereq: loading task: %w", err)
		}
		if task.Summary == nil {
			return invalid("task cannot be completed without a summary (300-500 characters)"), nil
		}
		if err := models.ValidateSummaryLength(*task.Summary); err != nil {
			return invalid(fmt.Sprintf("summary is %d characters; completion requires 300-500", len(*task.Summary))), nil
		}
	}

	if currentRole == models.RoleQueue && newRole != models.RoleQueue {
		edges, blockerIDs, err := dependency.BlockersOf(ctx, v.store, *taskID)
		if err != nil {
			return nil, fmt.Errorf("prereq: loading blocking edges: %w", err)
		}
		for i, e := range edges {
			blockerID := blockerIDs[i]
			blocker, err := v.store.GetTask(ctx, blockerID)
			if err != nil {
				return nil, fmt.Errorf("prereq: loading blocker task %s: %w", blockerID, err)
			}
			blockerRole := v.resolver.Role(workflowconfig.ContainerTask, nil, blocker.Status)
			threshold := e.EffectiveUnblockAt()
			if !blockerRole.AtLeast(threshold) {
				return invalid(fmt.Sprintf("task is blocked by %s (role %q, needs %q)", blockerID, blockerRole, threshold),
					"wait for the blocking task to reach the required role"), nil
			}
		}
	}

	return valid(), nil
}
