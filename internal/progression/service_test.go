package progression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/prereq"
	"github.com/vantage-labs/orcaflow/internal/storetest"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func TestNextStatusReadyForUnblockedTask(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	cfg := workflowconfig.DefaultWorkflow()
	svc := New(cfg, prereq.New(cfg, s))

	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, Slug: "t1", Title: "Task", Status: "pending", Priority: models.PriorityMedium}))

	res, err := svc.NextStatus(ctx, workflowconfig.ContainerTask, &taskID, nil, "pending")
	require.NoError(t, err)
	assert.Equal(t, KindReady, res.Kind)
	assert.Equal(t, "in-progress", res.Recommended)
}

func TestNextStatusBlockedLiftsInvalidToBlocked(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	cfg := workflowconfig.DefaultWorkflow()
	svc := New(cfg, prereq.New(cfg, s))

	blocker := models.NewID()
	blocked := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: blocker, Slug: "b", Title: "Blocker", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: blocked, Slug: "d", Title: "Dependent", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: blocker, ToTask: blocked, Kind: models.RelationshipBlocks}))

	res, err := svc.NextStatus(ctx, workflowconfig.ContainerTask, &blocked, nil, "pending")
	require.NoError(t, err)
	assert.Equal(t, KindBlocked, res.Kind)
	assert.NotEmpty(t, res.BlockerReason)
}

func TestNextStatusTerminalAtEndOfFlow(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	cfg := workflowconfig.DefaultWorkflow()
	svc := New(cfg, prereq.New(cfg, s))

	taskID := models.NewID()
	summary := ""
	for i := 0; i < 350; i++ {
		summary += "x"
	}
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, Slug: "t1", Title: "Task", Status: "completed", Priority: models.PriorityMedium, Summary: &summary}))

	res, err := svc.NextStatus(ctx, workflowconfig.ContainerTask, &taskID, nil, "completed")
	require.NoError(t, err)
	assert.Equal(t, KindTerminal, res.Kind)
}

func TestReadinessUsesCallerSuppliedTarget(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	cfg := workflowconfig.DefaultWorkflow()
	svc := New(cfg, prereq.New(cfg, s))

	taskID := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: taskID, Slug: "t1", Title: "Task", Status: "in-review", Priority: models.PriorityMedium}))

	res, err := svc.Readiness(ctx, workflowconfig.ContainerTask, &taskID, nil, "in-review", "completed")
	require.NoError(t, err)
	assert.Equal(t, prereq.Invalid, res.Outcome)
}

func TestFlowPathProjectsSequenceAndPosition(t *testing.T) {
	cfg := workflowconfig.DefaultWorkflow()
	svc := New(cfg, prereq.New(cfg, storetest.New()))

	current := "in-progress"
	fp := svc.FlowPath(workflowconfig.ContainerTask, nil, &current)
	assert.Equal(t, 1, fp.Position)
	assert.Contains(t, fp.Sequence, "completed")
}
