package prereq

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/storetest"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func TestValidateStructuralRejectsUnknownStatus(t *testing.T) {
	v := New(workflowconfig.DefaultWorkflow(), storetest.New())
	res, err := v.Validate(context.Background(), Request{
		ContainerType: workflowconfig.ContainerTask,
		CurrentStatus: "pending",
		NewStatus:     "teleported",
	})
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Outcome)
}

func TestValidateTerminalGateBlocksNonEmergencyExit(t *testing.T) {
	v := New(workflowconfig.DefaultWorkflow(), storetest.New())
	res, err := v.Validate(context.Background(), Request{
		ContainerType: workflowconfig.ContainerTask,
		CurrentStatus: "completed",
		NewStatus:     "in-progress",
	})
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Outcome)

	res2, err := v.Validate(context.Background(), Request{
		ContainerType: workflowconfig.ContainerTask,
		CurrentStatus: "completed",
		NewStatus:     "cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, Valid, res2.Outcome)
}

func TestValidateBackwardMovementRejectedByDefault(t *testing.T) {
	v := New(workflowconfig.DefaultWorkflow(), storetest.New())
	res, err := v.Validate(context.Background(), Request{
		ContainerType: workflowconfig.ContainerTask,
		CurrentStatus: "in-review",
		NewStatus:     "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Outcome)
}

func TestValidateTaskCompletionRequiresSummary(t *testing.T) {
	s := storetest.New()
	taskID := models.NewID()
	require.NoError(t, s.CreateTask(context.Background(), &models.Task{
		ID: taskID, Slug: "t1", Title: "Task one", Status: "in-review", Priority: models.PriorityMedium,
	}))

	v := New(workflowconfig.DefaultWorkflow(), s)
	res, err := v.Validate(context.Background(), Request{
		ContainerType: workflowconfig.ContainerTask,
		EntityID:      &taskID,
		CurrentStatus: "in-review",
		NewStatus:     "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Outcome)

	summary := strings.Repeat("x", 350)
	task, _ := s.GetTask(context.Background(), taskID)
	task.Summary = &summary
	require.NoError(t, s.UpdateTask(context.Background(), task))

	res2, err := v.Validate(context.Background(), Request{
		ContainerType: workflowconfig.ContainerTask,
		EntityID:      &taskID,
		CurrentStatus: "in-review",
		NewStatus:     "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, Valid, res2.Outcome)
}

func TestValidateTaskStartBlockedByUnsatisfiedDependency(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	blocker := models.NewID()
	blocked := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: blocker, Slug: "b", Title: "Blocker", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: blocked, Slug: "d", Title: "Dependent", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: blocker, ToTask: blocked, Kind: models.RelationshipBlocks}))

	v := New(workflowconfig.DefaultWorkflow(), s)
	res, err := v.Validate(ctx, Request{
		ContainerType: workflowconfig.ContainerTask,
		EntityID:      &blocked,
		CurrentStatus: "pending",
		NewStatus:     "in-progress",
	})
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Outcome)

	blockerTask, _ := s.GetTask(ctx, blocker)
	blockerTask.Status = "completed"
	require.NoError(t, s.UpdateTask(ctx, blockerTask))

	res2, err := v.Validate(ctx, Request{
		ContainerType: workflowconfig.ContainerTask,
		EntityID:      &blocked,
		CurrentStatus: "pending",
		NewStatus:     "in-progress",
	})
	require.NoError(t, err)
	assert.Equal(t, Valid, res2.Outcome)
}

func TestValidateTaskStartNotGatedByItsOwnOutgoingBlocksEdge(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	blocker := models.NewID()
	blocked := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: blocker, Slug: "b", Title: "Blocker", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: blocked, Slug: "d", Title: "Dependent", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: blocker, ToTask: blocked, Kind: models.RelationshipBlocks}))

	v := New(workflowconfig.DefaultWorkflow(), s)
	res, err := v.Validate(ctx, Request{
		ContainerType: workflowconfig.ContainerTask,
		EntityID:      &blocker,
		CurrentStatus: "pending",
		NewStatus:     "in-progress",
	})
	require.NoError(t, err)
	assert.Equal(t, Valid, res.Outcome)
}

func TestValidateFeatureRequiresVerificationSuppressesAutomatic(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{
		ID: featureID, Slug: "f1", Name: "Feature", Status: "in-review", Priority: models.PriorityHigh, RequiresVerification: true,
	}))

	v := New(workflowconfig.DefaultWorkflow(), s)
	res, err := v.Validate(ctx, Request{
		ContainerType: workflowconfig.ContainerFeature,
		EntityID:      &featureID,
		CurrentStatus: "in-review",
		NewStatus:     "done",
		Manual:        false,
	})
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Outcome)

	res2, err := v.Validate(ctx, Request{
		ContainerType: workflowconfig.ContainerFeature,
		EntityID:      &featureID,
		CurrentStatus: "in-review",
		NewStatus:     "done",
		Manual:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, Valid, res2.Outcome)
}

func TestValidateFeatureLeavingInitialRequiresChild(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	featureID := models.NewID()
	require.NoError(t, s.CreateFeature(ctx, &models.Feature{ID: featureID, Slug: "f1", Name: "Feature", Status: "backlog", Priority: models.PriorityMedium}))

	v := New(workflowconfig.DefaultWorkflow(), s)
	res, err := v.Validate(ctx, Request{
		ContainerType: workflowconfig.ContainerFeature,
		EntityID:      &featureID,
		CurrentStatus: "backlog",
		NewStatus:     "in-progress",
	})
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Outcome)
}
