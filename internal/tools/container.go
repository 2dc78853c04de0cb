package tools

import (
	"context"

	"github.com/vantage-labs/orcaflow/internal/apperr"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/prereq"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// ManageContainerParams bundles the fields manageContainer accepts
// across its five operations and three container types; callers only
// populate the fields relevant to their op.
type ManageContainerParams struct {
	Op                   string   `json:"op"`
	ContainerType        string   `json:"containerType"`
	ID                   string   `json:"id,omitempty"`
	ProjectID            *string  `json:"projectId,omitempty"`
	FeatureID            *string  `json:"featureId,omitempty"`
	Slug                 string   `json:"slug,omitempty"`
	Name                 string   `json:"name,omitempty"`
	Summary              *string  `json:"summary,omitempty"`
	Description          *string  `json:"description,omitempty"`
	Status               string   `json:"status,omitempty"`
	NewStatus            string   `json:"newStatus,omitempty"`
	Priority             string   `json:"priority,omitempty"`
	Tags                 []string `json:"tags,omitempty"`
	Complexity           *int     `json:"complexity,omitempty"`
	RequiresVerification *bool    `json:"requiresVerification,omitempty"`
}

// ManageContainer is the write-path entry point: create, get, update,
// setStatus, delete, dispatched per containerType.
func (s *Service) ManageContainer(ctx context.Context, p ManageContainerParams) *Envelope {
	containerType, err := parseContainerType(p.ContainerType)
	if err != nil {
		return Fail(err)
	}

	switch p.Op {
	case "create":
		return s.createContainer(ctx, containerType, p)
	case "get":
		return s.getContainer(ctx, containerType, p)
	case "update":
		return s.updateContainer(ctx, containerType, p)
	case "setStatus":
		return s.setStatus(ctx, containerType, p)
	case "delete":
		return s.deleteContainer(ctx, containerType, p)
	default:
		return Fail(apperr.Validation("unknown op %q: must be create, get, update, setStatus, or delete", p.Op))
	}
}

func (s *Service) createContainer(ctx context.Context, containerType workflowconfig.ContainerType, p ManageContainerParams) *Envelope {
	priority := models.Priority(p.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}
	status := p.Status
	if status == "" {
		status = s.cfg.For(containerType).DefaultFlow[0]
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	switch containerType {
	case workflowconfig.ContainerProject:
		proj := &models.Project{ID: models.NewID(), Slug: p.Slug, Name: p.Name, Summary: p.Summary, Status: status, Tags: tags}
		if err := proj.Validate(); err != nil {
			return Fail(apperr.Validation("%v", err))
		}
		if err := s.store.CreateProject(ctx, proj); err != nil {
			return Fail(apperr.Store(err))
		}
		return Ok("project created", proj)

	case workflowconfig.ContainerFeature:
		var projectID *models.ID
		if p.ProjectID != nil {
			id, err := parseID("projectId", *p.ProjectID)
			if err != nil {
				return Fail(err)
			}
			projectID = &id
		}
		feat := &models.Feature{
			ID: models.NewID(), ProjectID: projectID, Slug: p.Slug, Name: p.Name,
			Summary: p.Summary, Description: p.Description, Status: status,
			Priority: priority, Tags: tags,
		}
		if p.RequiresVerification != nil {
			feat.RequiresVerification = *p.RequiresVerification
		}
		if err := feat.Validate(); err != nil {
			return Fail(apperr.Validation("%v", err))
		}
		if err := s.store.CreateFeature(ctx, feat); err != nil {
			return Fail(apperr.Store(err))
		}
		return Ok("feature created", feat)

	default: // task
		var featureID *models.ID
		if p.FeatureID != nil {
			id, err := parseID("featureId", *p.FeatureID)
			if err != nil {
				return Fail(err)
			}
			featureID = &id
		}
		task := &models.Task{
			ID: models.NewID(), FeatureID: featureID, Slug: p.Slug, Title: p.Name,
			Description: p.Description, Status: status, Priority: priority,
			Complexity: p.Complexity, Tags: tags,
		}
		if err := task.Validate(); err != nil {
			return Fail(apperr.Validation("%v", err))
		}
		if err := s.store.CreateTask(ctx, task); err != nil {
			return Fail(apperr.Store(err))
		}
		return Ok("task created", task)
	}
}

func (s *Service) getContainer(ctx context.Context, containerType workflowconfig.ContainerType, p ManageContainerParams) *Envelope {
	id, err := parseID("id", p.ID)
	if err != nil {
		return Fail(err)
	}
	entity, err := s.fetch(ctx, containerType, id)
	if err != nil {
		return Fail(err)
	}
	return Ok("ok", entity)
}

func (s *Service) fetch(ctx context.Context, containerType workflowconfig.ContainerType, id models.ID) (any, error) {
	switch containerType {
	case workflowconfig.ContainerProject:
		return s.store.GetProject(ctx, id)
	case workflowconfig.ContainerFeature:
		return s.store.GetFeature(ctx, id)
	default:
		return s.store.GetTask(ctx, id)
	}
}

func (s *Service) updateContainer(ctx context.Context, containerType workflowconfig.ContainerType, p ManageContainerParams) *Envelope {
	id, err := parseID("id", p.ID)
	if err != nil {
		return Fail(err)
	}

	switch containerType {
	case workflowconfig.ContainerProject:
		proj, err := s.store.GetProject(ctx, id)
		if err != nil {
			return Fail(err)
		}
		if p.Name != "" {
			proj.Name = p.Name
		}
		if p.Summary != nil {
			proj.Summary = p.Summary
		}
		if p.Tags != nil {
			proj.Tags = p.Tags
		}
		if err := proj.Validate(); err != nil {
			return Fail(apperr.Validation("%v", err))
		}
		if err := s.store.UpdateProject(ctx, proj); err != nil {
			return Fail(apperr.Store(err))
		}
		return Ok("project updated", proj)

	case workflowconfig.ContainerFeature:
		feat, err := s.store.GetFeature(ctx, id)
		if err != nil {
			return Fail(err)
		}
		applyFeatureUpdates(feat, p)
		if err := feat.Validate(); err != nil {
			return Fail(apperr.Validation("%v", err))
		}
		if err := s.store.UpdateFeature(ctx, feat); err != nil {
			return Fail(apperr.Store(err))
		}
		return Ok("feature updated", feat)

	default:
		task, err := s.store.GetTask(ctx, id)
		if err != nil {
			return Fail(err)
		}
		applyTaskUpdates(task, p)
		if err := task.Validate(); err != nil {
			return Fail(apperr.Validation("%v", err))
		}
		if err := s.store.UpdateTask(ctx, task); err != nil {
			return Fail(apperr.Store(err))
		}
		return Ok("task updated", task)
	}
}

func applyFeatureUpdates(f *models.Feature, p ManageContainerParams) {
	if p.Name != "" {
		f.Name = p.Name
	}
	if p.Summary != nil {
		f.Summary = p.Summary
	}
	if p.Description != nil {
		f.Description = p.Description
	}
	if p.Priority != "" {
		f.Priority = models.Priority(p.Priority)
	}
	if p.Tags != nil {
		f.Tags = p.Tags
	}
	if p.RequiresVerification != nil {
		f.RequiresVerification = *p.RequiresVerification
	}
}

func applyTaskUpdates(t *models.Task, p ManageContainerParams) {
	if p.Name != "" {
		t.Title = p.Name
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Priority != "" {
		t.Priority = models.Priority(p.Priority)
	}
	if p.Tags != nil {
		t.Tags = p.Tags
	}
	if p.Complexity != nil {
		t.Complexity = p.Complexity
	}
}

func (s *Service) deleteContainer(ctx context.Context, containerType workflowconfig.ContainerType, p ManageContainerParams) *Envelope {
	id, err := parseID("id", p.ID)
	if err != nil {
		return Fail(err)
	}
	var delErr error
	switch containerType {
	case workflowconfig.ContainerProject:
		delErr = s.store.DeleteProject(ctx, id)
	case workflowconfig.ContainerFeature:
		delErr = s.store.DeleteFeature(ctx, id)
	default:
		delErr = s.store.DeleteTask(ctx, id)
	}
	if delErr != nil {
		return Fail(delErr)
	}
	return Ok("deleted", nil)
}

// setStatusResult is the data payload returned by a successful
// setStatus call: the updated entity plus the cascade tree it
// triggered, if any.
type setStatusResult struct {
	Entity         any           `json:"entity"`
	Cascade        []any         `json:"cascade,omitempty"`
	UnblockedTasks []models.Task `json:"unblockedTasks,omitempty"`
}

// setStatus runs the write path in full: C4 validates the requested
// transition, the store persists it, and C6 propagates any knock-on
// cascade. A task reaching a terminal role also reports the tasks its
// own completion released, independent of anything the cascade tree
// surfaces for its parent feature.
func (s *Service) setStatus(ctx context.Context, containerType workflowconfig.ContainerType, p ManageContainerParams) *Envelope {
	id, err := parseID("id", p.ID)
	if err != nil {
		return Fail(err)
	}
	if p.NewStatus == "" {
		return Fail(apperr.Validation("newStatus is required"))
	}

	var result setStatusResult
	message := "status updated"

	txErr := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		txSvc := s.withStore(tx)

		tags, err := tagsOf(ctx, tx, containerType, id)
		if err != nil {
			return err
		}
		current, err := txSvc.currentStatus(ctx, containerType, id)
		if err != nil {
			return err
		}

		res, err := txSvc.validator.Validate(ctx, validateRequest(containerType, id, tags, current, p.NewStatus))
		if err != nil {
			return err
		}
		if res.Outcome == prereq.Invalid {
			return apperr.PrerequisiteNotMet(res.Reason, res.Suggestions)
		}

		fromRole := txSvc.resolver.Role(containerType, tags, current)
		toRole := txSvc.resolver.Role(containerType, tags, p.NewStatus)

		if err := txSvc.writeStatus(ctx, containerType, id, p.NewStatus); err != nil {
			return apperr.Store(err)
		}

		if fromRole != toRole {
			fr, fs := fromRole, current
			if err := tx.AppendRoleTransition(ctx, &models.RoleTransition{
				ID: models.NewID(), EntityID: id, EntityKind: entityKindOf(containerType),
				FromRole: &fr, ToRole: toRole, FromStatus: &fs, ToStatus: p.NewStatus, Trigger: "manual",
			}); err != nil {
				return apperr.Store(err)
			}
		}

		cascadeNodes, err := txSvc.cascade.Apply(ctx, entityKindOf(containerType), id, 0, txSvc.cascade.MaxDepth())
		if err != nil {
			return err
		}

		entity, err := txSvc.fetch(ctx, containerType, id)
		if err != nil {
			return err
		}

		result = setStatusResult{Entity: entity}
		for _, n := range cascadeNodes {
			result.Cascade = append(result.Cascade, n)
		}

		if containerType == workflowconfig.ContainerTask && toRole == models.RoleTerminal {
			unblocked, err := txSvc.newlyUnblocked(ctx, id)
			if err != nil {
				return err
			}
			for _, t := range unblocked {
				result.UnblockedTasks = append(result.UnblockedTasks, *t)
			}
		}

		if res.Outcome == prereq.ValidWithAdvisory {
			message = res.Advisory
		}
		return nil
	})
	if txErr != nil {
		return Fail(txErr)
	}

	return Ok(message, result)
}

func (s *Service) currentStatus(ctx context.Context, containerType workflowconfig.ContainerType, id models.ID) (string, error) {
	entity, err := s.fetch(ctx, containerType, id)
	if err != nil {
		return "", err
	}
	switch e := entity.(type) {
	case *models.Project:
		return e.Status, nil
	case *models.Feature:
		return e.Status, nil
	case *models.Task:
		return e.Status, nil
	default:
		return "", apperr.Internal(err)
	}
}

func (s *Service) writeStatus(ctx context.Context, containerType workflowconfig.ContainerType, id models.ID, newStatus string) error {
	switch containerType {
	case workflowconfig.ContainerProject:
		p, err := s.store.GetProject(ctx, id)
		if err != nil {
			return err
		}
		p.Status = newStatus
		return s.store.UpdateProject(ctx, p)
	case workflowconfig.ContainerFeature:
		f, err := s.store.GetFeature(ctx, id)
		if err != nil {
			return err
		}
		f.Status = newStatus
		return s.store.UpdateFeature(ctx, f)
	default:
		t, err := s.store.GetTask(ctx, id)
		if err != nil {
			return err
		}
		t.Status = newStatus
		return s.store.UpdateTask(ctx, t)
	}
}

// QueryContainerParams bundles queryContainer's fields across its
// three operations.
type QueryContainerParams struct {
	Op            string   `json:"op"`
	ContainerType string   `json:"containerType"`
	ID            string   `json:"id,omitempty"`
	ProjectID     *string  `json:"projectId,omitempty"`
	FeatureID     *string  `json:"featureId,omitempty"`
	Statuses      []string `json:"statuses,omitempty"`
}

// QueryContainer is the read-path entry point: get, search, overview.
func (s *Service) QueryContainer(ctx context.Context, p QueryContainerParams) *Envelope {
	containerType, err := parseContainerType(p.ContainerType)
	if err != nil {
		return Fail(err)
	}

	switch p.Op {
	case "get":
		id, err := parseID("id", p.ID)
		if err != nil {
			return Fail(err)
		}
		entity, err := s.fetch(ctx, containerType, id)
		if err != nil {
			return Fail(err)
		}
		return Ok("ok", entity)

	case "search":
		entities, err := s.search(ctx, containerType, p)
		if err != nil {
			return Fail(err)
		}
		return Ok("ok", entities)

	case "overview":
		return s.overview(ctx, containerType, p)

	default:
		return Fail(apperr.Validation("unknown op %q: must be get, search, or overview", p.Op))
	}
}

func (s *Service) search(ctx context.Context, containerType workflowconfig.ContainerType, p QueryContainerParams) (any, error) {
	switch containerType {
	case workflowconfig.ContainerProject:
		return s.store.ListProjects(ctx)
	case workflowconfig.ContainerFeature:
		filter := store.FeatureFilter{Statuses: p.Statuses}
		if p.ProjectID != nil {
			id, err := parseID("projectId", *p.ProjectID)
			if err != nil {
				return nil, err
			}
			filter.ProjectID = &id
		}
		return s.store.ListFeatures(ctx, filter)
	default:
		filter := store.TaskFilter{Statuses: p.Statuses}
		if p.ProjectID != nil {
			id, err := parseID("projectId", *p.ProjectID)
			if err != nil {
				return nil, err
			}
			filter.ProjectID = &id
		}
		if p.FeatureID != nil {
			id, err := parseID("featureId", *p.FeatureID)
			if err != nil {
				return nil, err
			}
			filter.FeatureID = &id
		}
		return s.store.ListTasks(ctx, filter)
	}
}

// overviewResult is the low-token projection queryContainer(op=overview)
// returns: counts and metadata only, never full entity bodies.
type overviewResult struct {
	ContainerType string         `json:"containerType"`
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
}

func (s *Service) overview(ctx context.Context, containerType workflowconfig.ContainerType, p QueryContainerParams) *Envelope {
	byStatus := map[string]int{}
	total := 0

	switch containerType {
	case workflowconfig.ContainerProject:
		projects, err := s.store.ListProjects(ctx)
		if err != nil {
			return Fail(apperr.Store(err))
		}
		for _, pr := range projects {
			byStatus[pr.Status]++
			total++
		}
	case workflowconfig.ContainerFeature:
		filter := store.FeatureFilter{}
		if p.ProjectID != nil {
			id, err := parseID("projectId", *p.ProjectID)
			if err != nil {
				return Fail(err)
			}
			filter.ProjectID = &id
		}
		features, err := s.store.ListFeatures(ctx, filter)
		if err != nil {
			return Fail(apperr.Store(err))
		}
		for _, f := range features {
			byStatus[f.Status]++
			total++
		}
	default:
		filter := store.TaskFilter{}
		if p.ProjectID != nil {
			id, err := parseID("projectId", *p.ProjectID)
			if err != nil {
				return Fail(err)
			}
			filter.ProjectID = &id
		}
		if p.FeatureID != nil {
			id, err := parseID("featureId", *p.FeatureID)
			if err != nil {
				return Fail(err)
			}
			filter.FeatureID = &id
		}
		tasks, err := s.store.ListTasks(ctx, filter)
		if err != nil {
			return Fail(apperr.Store(err))
		}
		for _, t := range tasks {
			byStatus[t.Status]++
			total++
		}
	}

	return Ok("ok", overviewResult{ContainerType: p.ContainerType, Total: total, ByStatus: byStatus})
}
