// Package storetest provides an in-memory store.Store implementation
// used by the engine packages' unit tests (C4-C7), so those tests can
// exercise the decision logic without needing a real database. The
// sqlite-backed store has its own dedicated tests in
// internal/store/sqlite.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
)

// MemStore is a trivial, lock-guarded, map-backed store.Store. It is not
// meant to be fast or to model real isolation levels — it exists purely
// so unit tests can set up fixtures and assert on the engine's
// decisions.
type MemStore struct {
	mu       sync.Mutex
	projects map[models.ID]*models.Project
	features map[models.ID]*models.Feature
	tasks    map[models.ID]*models.Task
	deps     map[models.ID]*models.Dependency
	history  []*models.RoleTransition
}

// New constructs an empty MemStore.
func New() *MemStore {
	return &MemStore{
		projects: make(map[models.ID]*models.Project),
		features: make(map[models.ID]*models.Feature),
		tasks:    make(map[models.ID]*models.Task),
		deps:     make(map[models.ID]*models.Dependency),
	}
}

func (m *MemStore) GetProject(_ context.Context, id models.ID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemStore) ListProjects(_ context.Context) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemStore) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := p.CreatedAt
	if now.IsZero() {
		now = timeNow()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *MemStore) UpdateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = timeNow()
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *MemStore) DeleteProject(_ context.Context, id models.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	for fid, f := range m.features {
		if f.ProjectID != nil && *f.ProjectID == id {
			m.deleteFeatureLocked(fid)
		}
	}
	return nil
}

func (m *MemStore) GetFeature(_ context.Context, id models.ID) (*models.Feature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.features[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MemStore) ListFeatures(_ context.Context, filter store.FeatureFilter) ([]*models.Feature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Feature, 0)
	for _, f := range m.features {
		if filter.ProjectID != nil && (f.ProjectID == nil || *f.ProjectID != *filter.ProjectID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStr(filter.Statuses, f.Status) {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemStore) CreateFeature(_ context.Context, f *models.Feature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = timeNow()
	}
	f.UpdatedAt = f.CreatedAt
	cp := *f
	m.features[f.ID] = &cp
	return nil
}

func (m *MemStore) UpdateFeature(_ context.Context, f *models.Feature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.features[f.ID]; !ok {
		return store.ErrNotFound
	}
	f.UpdatedAt = timeNow()
	cp := *f
	m.features[f.ID] = &cp
	return nil
}

func (m *MemStore) DeleteFeature(_ context.Context, id models.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteFeatureLocked(id)
	return nil
}

func (m *MemStore) deleteFeatureLocked(id models.ID) {
	delete(m.features, id)
	for tid, t := range m.tasks {
		if t.FeatureID != nil && *t.FeatureID == id {
			m.deleteTaskLocked(tid)
		}
	}
}

func (m *MemStore) GetTask(_ context.Context, id models.ID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemStore) ListTasks(_ context.Context, filter store.TaskFilter) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Task, 0)
	for _, t := range m.tasks {
		if filter.FeatureID != nil && (t.FeatureID == nil || *t.FeatureID != *filter.FeatureID) {
			continue
		}
		if filter.ProjectID != nil {
			if t.FeatureID == nil {
				continue
			}
			f, ok := m.features[*t.FeatureID]
			if !ok || f.ProjectID == nil || *f.ProjectID != *filter.ProjectID {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !containsStr(filter.Statuses, t.Status) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemStore) CreateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = timeNow()
	}
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *MemStore) UpdateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return store.ErrNotFound
	}
	t.UpdatedAt = timeNow()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *MemStore) DeleteTask(_ context.Context, id models.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteTaskLocked(id)
	return nil
}

func (m *MemStore) deleteTaskLocked(id models.ID) {
	delete(m.tasks, id)
	for eid, e := range m.deps {
		if e.FromTask == id || e.ToTask == id {
			delete(m.deps, eid)
		}
	}
}

func (m *MemStore) CreateDependency(_ context.Context, d *models.Dependency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.CreatedAt = timeNow()
	cp := *d
	m.deps[d.ID] = &cp
	return nil
}

func (m *MemStore) DeleteDependency(_ context.Context, id models.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deps, id)
	return nil
}

func (m *MemStore) ListDependencies(_ context.Context, taskID models.ID, direction store.EdgeDirection) ([]*models.Dependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listEdgesLocked(taskID, direction, nil), nil
}

func (m *MemStore) FindBlockingEdges(_ context.Context, taskID models.ID, direction store.EdgeDirection) ([]*models.Dependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blocking := map[models.RelationshipKind]bool{
		models.RelationshipBlocks:      true,
		models.RelationshipIsBlockedBy: true,
	}
	return m.listEdgesLocked(taskID, direction, blocking), nil
}

func (m *MemStore) listEdgesLocked(taskID models.ID, direction store.EdgeDirection, kindFilter map[models.RelationshipKind]bool) []*models.Dependency {
	out := make([]*models.Dependency, 0)
	for _, e := range m.deps {
		if kindFilter != nil && !kindFilter[e.Kind] {
			continue
		}
		switch direction {
		case store.DirectionIncoming:
			if e.ToTask != taskID {
				continue
			}
		case store.DirectionOutgoing:
			if e.FromTask != taskID {
				continue
			}
		default:
			if e.FromTask != taskID && e.ToTask != taskID {
				continue
			}
		}
		cp := *e
		out = append(out, &cp)
	}
	return out
}

func (m *MemStore) AppendRoleTransition(_ context.Context, rt *models.RoleTransition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt.Timestamp = timeNow()
	cp := *rt
	m.history = append(m.history, &cp)
	return nil
}

func (m *MemStore) ListRoleTransitions(_ context.Context, entityID models.ID) ([]*models.RoleTransition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.RoleTransition, 0)
	for _, rt := range m.history {
		if rt.EntityID == entityID {
			cp := *rt
			out = append(out, &cp)
		}
	}
	return out, nil
}

// WithTx runs fn against the same MemStore: the in-memory fake has no
// real rollback support, which is adequate for engine unit tests that
// don't assert on transactional failure semantics (those live in the
// sqlite store's own tests).
func (m *MemStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, m)
}

func containsStr(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// timeNow exists so every MemStore timestamp assignment routes through
// one place. CreateProject, CreateFeature and CreateTask keep a
// CreatedAt the caller has already set and only fill in a zero one from
// the wall clock.
func timeNow() time.Time { return time.Now() }
