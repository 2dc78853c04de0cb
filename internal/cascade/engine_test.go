package cascade

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/prereq"
	"github.com/vantage-labs/orcaflow/internal/storetest"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func setup(t *testing.T) (*storetest.MemStore, *Engine) {
	t.Helper()
	s := storetest.New()
	cfg := workflowconfig.DefaultWorkflow()
	v := prereq.New(cfg, s)
	return s, New(cfg, s, v)
}

func longSummary() string {
	return strings.Repeat("x", 350)
}

func TestFirstChildStartedAdvancesFeature(t *testing.T) {
	ctx := context.Background()
	s, eng := setup(t)

	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, Slug: "f", Name: "F", Status: "backlog", Priority: models.PriorityMedium}))

	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, FeatureID: &featureID, Slug: "t", Title: "T", Status: "in-progress", Priority: models.PriorityMedium}))

	nodes, err := eng.Apply(ctx, models.EntityTask, taskID, 0, eng.MaxDepth())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "first_child_started", nodes[0].Event)
	assert.True(t, nodes[0].Applied)
	assert.Equal(t, "in-progress", nodes[0].NewStatus)

	f, _ := s.GetFeature(ctx, featureID)
	assert.Equal(t, "in-progress", f.Status)
}

func TestFirstChildStartedSuppressedWhenStartCascadeDisabled(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	cfg := workflowconfig.DefaultWorkflow()
	cfg.AutoCascade.StartCascade.Enabled = false
	v := prereq.New(cfg, s)
	eng := New(cfg, s, v)

	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, Slug: "f", Name: "F", Status: "backlog", Priority: models.PriorityMedium}))
	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, FeatureID: &featureID, Slug: "t", Title: "T", Status: "in-progress", Priority: models.PriorityMedium}))

	nodes, err := eng.Apply(ctx, models.EntityTask, taskID, 0, eng.MaxDepth())
	require.NoError(t, err)
	assert.Empty(t, nodes, "first_child_started must be suppressed when start_cascade.enabled is false")

	f, _ := s.GetFeature(ctx, featureID)
	assert.Equal(t, "backlog", f.Status)
}

func TestAllTasksCompleteAdvancesFeatureToTerminal(t *testing.T) {
	ctx := context.Background()
	s, eng := setup(t)

	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, Slug: "f", Name: "F", Status: "in-review", Priority: models.PriorityMedium}))

	summary := longSummary()
	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, FeatureID: &featureID, Slug: "t", Title: "T", Status: "completed", Priority: models.PriorityMedium, Summary: &summary}))

	nodes, err := eng.Apply(ctx, models.EntityTask, taskID, 0, eng.MaxDepth())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "all_tasks_complete", nodes[0].Event)
	assert.True(t, nodes[0].Applied)
	assert.Equal(t, "done", nodes[0].NewStatus)

	f, _ := s.GetFeature(ctx, featureID)
	assert.Equal(t, "done", f.Status)
}

func TestAllTasksCompleteSuppressedByRequiresVerification(t *testing.T) {
	ctx := context.Background()
	s, eng := setup(t)

	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, Slug: "f", Name: "F", Status: "in-review", Priority: models.PriorityMedium, RequiresVerification: true}))

	summary := longSummary()
	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, FeatureID: &featureID, Slug: "t", Title: "T", Status: "completed", Priority: models.PriorityMedium, Summary: &summary}))

	nodes, err := eng.Apply(ctx, models.EntityTask, taskID, 0, eng.MaxDepth())
	require.NoError(t, err)
	assert.Empty(t, nodes, "completion cascade must be suppressed pending manual verification")

	f, _ := s.GetFeature(ctx, featureID)
	assert.Equal(t, "in-review", f.Status)
}

func TestCascadeDepthCapStopsSilently(t *testing.T) {
	ctx := context.Background()
	s, eng := setup(t)

	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, Slug: "f", Name: "F", Status: "backlog", Priority: models.PriorityMedium}))
	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, FeatureID: &featureID, Slug: "t", Title: "T", Status: "in-progress", Priority: models.PriorityMedium}))

	nodes, err := eng.Apply(ctx, models.EntityTask, taskID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	f, _ := s.GetFeature(ctx, featureID)
	assert.Equal(t, "backlog", f.Status, "depth cap must prevent any cascade from applying")
}

func TestApplyCascadesTwiceIsNoopSecondTime(t *testing.T) {
	ctx := context.Background()
	s, eng := setup(t)

	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, Slug: "f", Name: "F", Status: "backlog", Priority: models.PriorityMedium}))
	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, FeatureID: &featureID, Slug: "t", Title: "T", Status: "in-progress", Priority: models.PriorityMedium}))

	_, err := eng.Apply(ctx, models.EntityTask, taskID, 0, eng.MaxDepth())
	require.NoError(t, err)

	nodes, err := eng.Apply(ctx, models.EntityTask, taskID, 0, eng.MaxDepth())
	require.NoError(t, err)
	assert.Empty(t, nodes, "second pass with no intervening state change must be a no-op")
}

func TestFeatureSelfAdvancementSteppedThenRecursesToProject(t *testing.T) {
	ctx := context.Background()
	s, eng := setup(t)

	projectID := models.NewID()
	require.NoError(t, s.CreateProject(ctx, &models.Project{ID: projectID, Slug: "p", Name: "P", Status: "active"}))

	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, ProjectID: &projectID, Slug: "f", Name: "F", Status: "in-progress", Priority: models.PriorityMedium}))

	summary := longSummary()
	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, FeatureID: &featureID, Slug: "t", Title: "T", Status: "completed", Priority: models.PriorityMedium, Summary: &summary}))

	nodes, err := eng.Apply(ctx, models.EntityFeature, featureID, 0, eng.MaxDepth())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "feature_self_advancement", nodes[0].Event)
	assert.Equal(t, "in-review", nodes[0].NewStatus)

	f, _ := s.GetFeature(ctx, featureID)
	assert.Equal(t, "done", f.Status)
	p, _ := s.GetProject(ctx, projectID)
	assert.Equal(t, "completed", p.Status)
}
