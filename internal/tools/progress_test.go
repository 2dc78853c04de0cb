package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/orcaflow/internal/apperr"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/nexttask"
)

func TestGetNextItemDefaultsLimitWhenOmitted(t *testing.T) {
	svc, _ := newTestService()
	createTask(t, svc, "")

	env := svc.GetNextItem(context.Background(), GetNextItemParams{})
	require.True(t, env.Success)
	result := env.Data.(getNextItemResult)
	assert.Len(t, result.Items, nexttask.DefaultLimit)
}

func TestGetNextItemExplicitZeroLimitIsValidationError(t *testing.T) {
	svc, _ := newTestService()
	zero := 0
	env := svc.GetNextItem(context.Background(), GetNextItemParams{Limit: &zero})
	require.False(t, env.Success)
	assert.Equal(t, string(apperr.KindValidation), env.Error.Code)
}

func TestGetNextItemDetailIncludesSummaryAndTags(t *testing.T) {
	svc, store := newTestService()
	id := models.NewID()
	summary := "do the thing"
	require.NoError(t, store.CreateTask(context.Background(), &models.Task{
		ID: id, Slug: "t1", Title: "Task", Status: "pending", Priority: models.PriorityMedium,
		Summary: &summary, Tags: []string{"a"},
	}))

	limit := 1
	env := svc.GetNextItem(context.Background(), GetNextItemParams{Limit: &limit, Detail: true})
	require.True(t, env.Success)
	result := env.Data.(getNextItemResult)
	require.Len(t, result.Items, 1)
	require.NotNil(t, result.Items[0].Summary)
	assert.Equal(t, summary, *result.Items[0].Summary)
	assert.Equal(t, []string{"a"}, result.Items[0].Tags)
}

func TestProgressReadyForUnblockedTask(t *testing.T) {
	svc, store := newTestService()
	id := models.NewID()
	require.NoError(t, store.CreateTask(context.Background(), &models.Task{
		ID: id, Slug: "t1", Title: "Task", Status: "pending", Priority: models.PriorityMedium,
	}))

	idStr := id.String()
	env := svc.Progress(context.Background(), ProgressParams{
		EntityID: &idStr, ContainerType: "task", CurrentStatus: "pending",
	})
	require.True(t, env.Success)
	view := env.Data.(progressView)
	assert.Equal(t, "ready", view.Kind)
	assert.Equal(t, "in-progress", view.Recommended)
}

func TestFlowPathProjectsTaskDefaultSequence(t *testing.T) {
	svc, _ := newTestService()
	env := svc.FlowPath(context.Background(), FlowPathParams{ContainerType: "task"})
	require.True(t, env.Success)
	view := env.Data.(flowPathView)
	assert.Contains(t, view.Sequence, "completed")
}

func TestQueryHistoryReturnsTransitionsAfterSetStatus(t *testing.T) {
	svc, store := newTestService()
	id := models.NewID()
	require.NoError(t, store.CreateTask(context.Background(), &models.Task{
		ID: id, Slug: "t1", Title: "Task", Status: "pending", Priority: models.PriorityMedium,
	}))

	env := svc.ManageContainer(context.Background(), ManageContainerParams{
		Op: "setStatus", ContainerType: "task", ID: id.String(), NewStatus: "in-progress",
	})
	require.True(t, env.Success)

	env = svc.QueryHistory(context.Background(), QueryHistoryParams{EntityID: id.String()})
	require.True(t, env.Success)
	transitions := env.Data.([]*models.RoleTransition)
	require.Len(t, transitions, 1)
	assert.Equal(t, "in-progress", transitions[0].ToStatus)
}
