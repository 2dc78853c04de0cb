package tools

import (
	"context"

	"github.com/vantage-labs/orcaflow/internal/apperr"
	"github.com/vantage-labs/orcaflow/internal/cascade"
	"github.com/vantage-labs/orcaflow/internal/dependency"
	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/prereq"
	"github.com/vantage-labs/orcaflow/internal/progression"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// Service wires every engine component behind the tool surface. One
// Service is built per resolved workflow config snapshot (the config
// loader's cache controls how often a fresh one is needed).
type Service struct {
	store       store.Store
	cfg         *workflowconfig.WorkflowConfig
	resolver    *flow.Resolver
	validator   *prereq.Validator
	progression *progression.Service
	cascade     *cascade.Engine
}

// New builds a Service bound to a store and a loaded workflow config.
func New(s store.Store, cfg *workflowconfig.WorkflowConfig) *Service {
	validator := prereq.New(cfg, s)
	return &Service{
		store:       s,
		cfg:         cfg,
		resolver:    flow.New(cfg),
		validator:   validator,
		progression: progression.New(cfg, validator),
		cascade:     cascade.New(cfg, s, validator),
	}
}

// withStore returns a Service bound to st instead of s's own store,
// used to run a sequence of engine calls against a transaction-scoped
// Store so validation, the status write, and the cascade tree it
// triggers all see (and commit or roll back as) one unit.
func (s *Service) withStore(st store.Store) *Service {
	validator := prereq.New(s.cfg, st)
	return &Service{
		store:       st,
		cfg:         s.cfg,
		resolver:    s.resolver,
		validator:   validator,
		progression: progression.New(s.cfg, validator),
		cascade:     cascade.New(s.cfg, st, validator),
	}
}

func parseContainerType(s string) (workflowconfig.ContainerType, error) {
	switch s {
	case "project":
		return workflowconfig.ContainerProject, nil
	case "feature":
		return workflowconfig.ContainerFeature, nil
	case "task":
		return workflowconfig.ContainerTask, nil
	default:
		return "", apperr.Validation("unknown containerType %q: must be project, feature, or task", s)
	}
}

func entityKindOf(t workflowconfig.ContainerType) models.EntityKind {
	switch t {
	case workflowconfig.ContainerProject:
		return models.EntityProject
	case workflowconfig.ContainerFeature:
		return models.EntityFeature
	default:
		return models.EntityTask
	}
}

func parseID(field, s string) (models.ID, error) {
	if s == "" {
		return models.ID{}, apperr.Validation("%s is required", field)
	}
	id, err := models.ParseID(s)
	if err != nil {
		return models.ID{}, apperr.Validation("%s is not a valid UUID: %v", field, err)
	}
	return id, nil
}

// tagsOf returns the tags attached to an entity, used to resolve its
// active flow; projects and features/tasks without tags resolve to the
// container's default_flow.
func tagsOf(ctx context.Context, s store.Store, containerType workflowconfig.ContainerType, id models.ID) ([]string, error) {
	switch containerType {
	case workflowconfig.ContainerFeature:
		f, err := s.GetFeature(ctx, id)
		if err != nil {
			return nil, err
		}
		return f.Tags, nil
	case workflowconfig.ContainerTask:
		t, err := s.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return t.Tags, nil
	default:
		p, err := s.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		return p.Tags, nil
	}
}

func validateRequest(containerType workflowconfig.ContainerType, id models.ID, tags []string, current, newStatus string) prereq.Request {
	return prereq.Request{
		ContainerType: containerType,
		EntityID:      &id,
		Tags:          tags,
		CurrentStatus: current,
		NewStatus:     newStatus,
		Manual:        true,
	}
}

// newlyUnblocked reports the tasks directly released by taskID
// reaching a terminal role. This is distinct from the cascade tree's
// own UnblockedTasks field: the cascade engine only ever receives a
// feature or project as the root of a recursive call, so the task that
// was written directly by this operation needs its own release check
// here at the tool layer.
func (s *Service) newlyUnblocked(ctx context.Context, taskID models.ID) ([]*models.Task, error) {
	return dependency.NewlyUnblocked(ctx, s.store, s.resolver, taskID)
}
