package cascade

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// candidateEvent is one proposed transition discovered by detectEvents,
// not yet validated or applied.
type candidateEvent struct {
	name           string
	targetType     models.EntityKind
	targetID       models.ID
	tags           []string
	proposedStatus string
}

// detectEvents computes the candidate cascade events for the entity
// that just had its status written, per the task-changed and
// feature-changed event tables. Project changes never cascade upward.
func (e *Engine) detectEvents(ctx context.Context, entityType models.EntityKind, entityID models.ID) ([]candidateEvent, error) {
	switch entityType {
	case models.EntityTask:
		return e.detectTaskEvents(ctx, entityID)
	case models.EntityFeature:
		return e.detectFeatureEvents(ctx, entityID)
	default:
		return nil, nil
	}
}

func (e *Engine) detectTaskEvents(ctx context.Context, taskID models.ID) ([]candidateEvent, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("cascade: loading task %s: %w", taskID, err)
	}
	if task.FeatureID == nil {
		return nil, nil
	}
	feature, err := e.store.GetFeature(ctx, *task.FeatureID)
	if err != nil {
		return nil, fmt.Errorf("cascade: loading parent feature %s: %w", *task.FeatureID, err)
	}
	siblings, err := e.store.ListTasks(ctx, store.TaskFilter{FeatureID: task.FeatureID})
	if err != nil {
		return nil, fmt.Errorf("cascade: listing sibling tasks: %w", err)
	}

	taskRole := e.resolver.Role(workflowconfig.ContainerTask, nil, task.Status)
	featureRole := e.resolver.Role(workflowconfig.ContainerFeature, feature.Tags, feature.Status)

	var out []candidateEvent

	if e.cfg.AutoCascade.StartCascade.Enabled && taskRole == models.RoleWork && featureRole == models.RoleQueue {
		if next, ok := e.oneStepAdvance(workflowconfig.ContainerFeature, feature.Tags, feature.Status); ok {
			out = append(out, candidateEvent{"first_child_started", models.EntityFeature, feature.ID, feature.Tags, next})
		}
	}

	if taskRole == models.RoleReview && featureRole == models.RoleWork && allAtLeast(e, siblings, models.RoleReview) {
		if next, ok := e.oneStepAdvance(workflowconfig.ContainerFeature, feature.Tags, feature.Status); ok {
			if e.resolver.Role(workflowconfig.ContainerFeature, feature.Tags, next) == models.RoleReview {
				out = append(out, candidateEvent{"all_children_in_review", models.EntityFeature, feature.ID, feature.Tags, next})
			}
		}
	}

	if taskRole == models.RoleTerminal && allTerminal(e, siblings) {
		if next, ok := e.oneStepAdvance(workflowconfig.ContainerFeature, feature.Tags, feature.Status); ok {
			nextRole := e.resolver.Role(workflowconfig.ContainerFeature, feature.Tags, next)
			if nextRole == models.RoleTerminal && feature.RequiresVerification {
				// Manual completion required; suppress the automatic event.
			} else {
				out = append(out, candidateEvent{"all_tasks_complete", models.EntityFeature, feature.ID, feature.Tags, next})
			}
		}
	}

	return out, nil
}

func (e *Engine) detectFeatureEvents(ctx context.Context, featureID models.ID) ([]candidateEvent, error) {
	feature, err := e.store.GetFeature(ctx, featureID)
	if err != nil {
		return nil, fmt.Errorf("cascade: loading feature %s: %w", featureID, err)
	}

	var out []candidateEvent

	featureRole := e.resolver.Role(workflowconfig.ContainerFeature, feature.Tags, feature.Status)
	if featureRole != models.RoleTerminal {
		tasks, err := e.store.ListTasks(ctx, store.TaskFilter{FeatureID: &feature.ID})
		if err != nil {
			return nil, fmt.Errorf("cascade: listing feature tasks: %w", err)
		}
		if len(tasks) > 0 && allTerminal(e, tasks) {
			if next, ok := e.oneStepAdvance(workflowconfig.ContainerFeature, feature.Tags, feature.Status); ok {
				nextRole := e.resolver.Role(workflowconfig.ContainerFeature, feature.Tags, next)
				if !(nextRole == models.RoleTerminal && feature.RequiresVerification) {
					out = append(out, candidateEvent{"feature_self_advancement", models.EntityFeature, feature.ID, feature.Tags, next})
				}
			}
		}
	}

	if feature.ProjectID == nil {
		return out, nil
	}
	project, err := e.store.GetProject(ctx, *feature.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("cascade: loading parent project %s: %w", *feature.ProjectID, err)
	}
	siblingFeatures, err := e.store.ListFeatures(ctx, store.FeatureFilter{ProjectID: feature.ProjectID})
	if err != nil {
		return nil, fmt.Errorf("cascade: listing sibling features: %w", err)
	}
	projectRole := e.resolver.Role(workflowconfig.ContainerProject, project.Tags, project.Status)

	if e.cfg.AutoCascade.StartCascade.Enabled && featureRole == models.RoleWork && projectRole == models.RoleQueue {
		if next, ok := e.oneStepAdvance(workflowconfig.ContainerProject, project.Tags, project.Status); ok {
			out = append(out, candidateEvent{"first_child_started", models.EntityProject, project.ID, project.Tags, next})
		}
	}

	if featureRole == models.RoleTerminal && allFeaturesTerminal(e, siblingFeatures) {
		if next, ok := e.oneStepAdvance(workflowconfig.ContainerProject, project.Tags, project.Status); ok {
			out = append(out, candidateEvent{"all_features_complete", models.EntityProject, project.ID, project.Tags, next})
		}
	}

	return out, nil
}

// oneStepAdvance proposes the status immediately after current in the
// active flow for containerType/tags. ok is false if current is at the
// end of its flow or not in it.
func (e *Engine) oneStepAdvance(containerType workflowconfig.ContainerType, tags []string, current string) (string, bool) {
	_, sequence, _ := e.resolver.ActiveFlow(containerType, tags)
	pos := flow.Position(sequence, current)
	if pos < 0 || pos == len(sequence)-1 {
		return "", false
	}
	return sequence[pos+1], true
}

func allAtLeast(e *Engine, tasks []*models.Task, threshold models.Role) bool {
	for _, t := range tasks {
		role := e.resolver.Role(workflowconfig.ContainerTask, nil, t.Status)
		if role == models.RoleBlocked {
			continue
		}
		if !role.AtLeast(threshold) {
			return false
		}
	}
	return true
}

func allTerminal(e *Engine, tasks []*models.Task) bool {
	for _, t := range tasks {
		if e.resolver.Role(workflowconfig.ContainerTask, nil, t.Status) != models.RoleTerminal {
			return false
		}
	}
	return true
}

func allFeaturesTerminal(e *Engine, features []*models.Feature) bool {
	for _, f := range features {
		if e.resolver.Role(workflowconfig.ContainerFeature, f.Tags, f.Status) != models.RoleTerminal {
			return false
		}
	}
	return true
}
