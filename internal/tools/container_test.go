package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/orcaflow/internal/apperr"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/storetest"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func newTestService() (*Service, *storetest.MemStore) {
	s := storetest.New()
	cfg := workflowconfig.DefaultWorkflow()
	return New(s, cfg), s
}

func TestManageContainerCreateTaskDefaultsStatusAndPriority(t *testing.T) {
	svc, _ := newTestService()
	env := svc.ManageContainer(context.Background(), ManageContainerParams{
		Op: "create", ContainerType: "task", Slug: "t1", Name: "Task One",
	})
	require.True(t, env.Success)
	task, ok := env.Data.(*models.Task)
	require.True(t, ok)
	assert.Equal(t, "pending", task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
}

func TestManageContainerUnknownOpFails(t *testing.T) {
	svc, _ := newTestService()
	env := svc.ManageContainer(context.Background(), ManageContainerParams{Op: "bogus", ContainerType: "task"})
	require.False(t, env.Success)
	assert.Equal(t, string(apperr.KindValidation), env.Error.Code)
}

func TestManageContainerUnknownContainerTypeFails(t *testing.T) {
	svc, _ := newTestService()
	env := svc.ManageContainer(context.Background(), ManageContainerParams{Op: "create", ContainerType: "widget"})
	require.False(t, env.Success)
	assert.Equal(t, string(apperr.KindValidation), env.Error.Code)
}

func TestQueryContainerGetNotFound(t *testing.T) {
	svc, _ := newTestService()
	env := svc.QueryContainer(context.Background(), QueryContainerParams{
		Op: "get", ContainerType: "task", ID: models.NewID().String(),
	})
	require.False(t, env.Success)
	assert.Equal(t, string(apperr.KindNotFound), env.Error.Code)
}

func TestSetStatusRecordsRoleTransitionOnRoleChange(t *testing.T) {
	svc, store := newTestService()
	taskID := models.NewID()
	require.NoError(t, store.CreateTask(context.Background(), &models.Task{
		ID: taskID, Slug: "t1", Title: "Task", Status: "pending", Priority: models.PriorityMedium,
	}))

	env := svc.ManageContainer(context.Background(), ManageContainerParams{
		Op: "setStatus", ContainerType: "task", ID: taskID.String(), NewStatus: "in-progress",
	})
	require.True(t, env.Success)

	transitions, err := store.ListRoleTransitions(context.Background(), taskID)
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Equal(t, "pending", *transitions[0].FromStatus)
	assert.Equal(t, "in-progress", transitions[0].ToStatus)
	assert.Equal(t, "manual", transitions[0].Trigger)
}

func TestSetStatusUnknownTargetStatusFails(t *testing.T) {
	svc, store := newTestService()
	taskID := models.NewID()
	require.NoError(t, store.CreateTask(context.Background(), &models.Task{
		ID: taskID, Slug: "t1", Title: "Task", Status: "pending", Priority: models.PriorityMedium,
	}))

	env := svc.ManageContainer(context.Background(), ManageContainerParams{
		Op: "setStatus", ContainerType: "task", ID: taskID.String(), NewStatus: "not-a-real-status",
	})
	require.False(t, env.Success)
	assert.Equal(t, string(apperr.KindPrerequisiteNotMet), env.Error.Code)
}

func TestQueryContainerOverviewCountsByStatus(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	require.NoError(t, store.CreateTask(ctx, &models.Task{ID: models.NewID(), Slug: "a", Title: "A", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, store.CreateTask(ctx, &models.Task{ID: models.NewID(), Slug: "b", Title: "B", Status: "pending", Priority: models.PriorityMedium}))
	require.NoError(t, store.CreateTask(ctx, &models.Task{ID: models.NewID(), Slug: "c", Title: "C", Status: "completed", Priority: models.PriorityMedium}))

	env := svc.QueryContainer(ctx, QueryContainerParams{Op: "overview", ContainerType: "task"})
	require.True(t, env.Success)
	result, ok := env.Data.(overviewResult)
	require.True(t, ok)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.ByStatus["pending"])
	assert.Equal(t, 1, result.ByStatus["completed"])
}
