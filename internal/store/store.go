// Package store defines the entity store API (C1): typed read/write
// access to projects, features, tasks, dependencies, and role
// transitions. It is modeled as an interface, not a database — the core
// engine packages (flow, prereq, progression, cascade, dependency,
// nexttask) depend only on this interface, never on a concrete driver.
package store

import (
	"context"

	"github.com/vantage-labs/orcaflow/internal/models"
)

// EdgeDirection selects which end of a dependency edge to query from.
type EdgeDirection string

const (
	DirectionIncoming EdgeDirection = "incoming"
	DirectionOutgoing EdgeDirection = "outgoing"
	DirectionBoth     EdgeDirection = "both"
)

// TaskFilter narrows ListTasks to a project or a feature, plus a status
// allow-list. Every field is optional; the zero filter lists everything.
type TaskFilter struct {
	ProjectID *models.ID
	FeatureID *models.ID
	Statuses  []string
}

// FeatureFilter narrows ListFeatures to a project.
type FeatureFilter struct {
	ProjectID *models.ID
	Statuses  []string
}

// Store is the full entity store surface consumed by the engine.
// Implementations MUST make every mutating method safe for concurrent
// use and MUST honor ctx cancellation.
type Store interface {
	// Projects
	GetProject(ctx context.Context, id models.ID) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id models.ID) error

	// Features
	GetFeature(ctx context.Context, id models.ID) (*models.Feature, error)
	ListFeatures(ctx context.Context, filter FeatureFilter) ([]*models.Feature, error)
	CreateFeature(ctx context.Context, f *models.Feature) error
	UpdateFeature(ctx context.Context, f *models.Feature) error
	DeleteFeature(ctx context.Context, id models.ID) error

	// Tasks
	GetTask(ctx context.Context, id models.ID) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id models.ID) error

	// Dependencies
	CreateDependency(ctx context.Context, d *models.Dependency) error
	DeleteDependency(ctx context.Context, id models.ID) error
	ListDependencies(ctx context.Context, taskID models.ID, direction EdgeDirection) ([]*models.Dependency, error)
	// FindBlockingEdges is ListDependencies narrowed to BLOCKS/IS_BLOCKED_BY
	// kinds only — RELATES_TO is never returned.
	FindBlockingEdges(ctx context.Context, taskID models.ID, direction EdgeDirection) ([]*models.Dependency, error)

	// Role transitions
	AppendRoleTransition(ctx context.Context, rt *models.RoleTransition) error
	ListRoleTransitions(ctx context.Context, entityID models.ID) ([]*models.RoleTransition, error)

	// WithTx runs fn within a single atomic transaction: all store calls
	// issued through the Store passed to fn commit together or roll back
	// together. Implementations MUST support nesting calls from within
	// fn back onto the same Store value (so callers can just pass their
	// ambient Store through).
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// ErrNotFound is returned by Get* methods when id resolves to nothing.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "entity not found" }
