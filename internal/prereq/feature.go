package prereq

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func (v *Validator) validateFeature(ctx context.Context, featureID *models.ID, tags []string, currentStatus, newStatus string, manual bool) (*Result, error) {
	if featureID == nil {
		return valid(), nil
	}

	children, err := v.store.ListTasks(ctx, store.TaskFilter{FeatureID: featureID})
	if err != nil {
		return nil, fmt.Errorf("prereq: listing children of feature: %w", err)
	}

	currentRole := v.resolver.Role(workflowconfig.ContainerFeature, tags, currentStatus)
	newRole := v.resolver.Role(workflowconfig.ContainerFeature, tags, newStatus)

	// Leaving the initial queue-role status requires at least one child
	// task.
	if currentRole == models.RoleQueue && newRole != models.RoleQueue && len(children) == 0 {
		return invalid("cannot leave the initial status with zero child tasks",
			"create at least one task under this feature first"), nil
	}

	// Entering a work-role status must not leapfrog ahead of children:
	// every non-blocked, non-terminal child must already be at or past
	// the feature's target role.
	if newRole == models.RoleWork {
		for _, c := range children {
			cRole := v.resolver.Role(workflowconfig.ContainerTask, nil, c.Status)
			if cRole == models.RoleBlocked || cRole == models.RoleTerminal {
				continue
			}
			if !cRole.AtLeast(newRole) {
				return invalid(fmt.Sprintf("cannot advance feature to role %q: child task %s is still at role %q", newRole, c.ID, cRole),
					"wait for child tasks to catch up, or advance them directly"), nil
			}
		}
	}

	// Entering terminal requires every child to be terminal, and if the
	// feature requires verification, the move must be manual.
	if newRole == models.RoleTerminal {
		f, err := v.store.GetFeature(ctx, *featureID)
		if err != nil {
			return nil, fmt.Errorf("prereq: loading feature: %w", err)
		}
		for _, c := range children {
			cRole := v.resolver.Role(workflowconfig.ContainerTask, nil, c.Status)
			if cRole != models.RoleTerminal {
				return invalid(fmt.Sprintf("cannot complete feature: task %s is not yet terminal (role %q)", c.ID, cRole),
					"complete or cancel all child tasks first"), nil
			}
		}
		if f.RequiresVerification && !manual {
			return invalid("feature requires manual verification before it can be marked terminal",
				"complete this feature with an explicit user-triggered request"), nil
		}
	}

	if len(children) == 0 && newRole == models.RoleWork {
		return advisory("no child tasks exist yet for this feature"), nil
	}

	return valid(), nil
}
