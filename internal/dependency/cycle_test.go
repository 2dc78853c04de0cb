package dependency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/storetest"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func newTask(t *testing.T, ctx context.Context, s *storetest.MemStore, status string) models.ID {
	t.Helper()
	id := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: id, Slug: id.String(), Title: "t", Status: status, Priority: models.PriorityMedium}))
	return id
}

func TestCheckCycleRejectsDirectReversal(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	a := newTask(t, ctx, s, "pending")
	b := newTask(t, ctx, s, "pending")

	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: a, ToTask: b, Kind: models.RelationshipBlocks}))

	err := CheckCycle(ctx, s, b, a, models.RelationshipBlocks)
	var cycleErr *CycleError
	require.Error(t, err)
	require.ErrorAs(t, err, &cycleErr)
}

func TestCheckCycleAllowsDiamond(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	a := newTask(t, ctx, s, "pending")
	b := newTask(t, ctx, s, "pending")
	c := newTask(t, ctx, s, "pending")
	d := newTask(t, ctx, s, "pending")

	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: a, ToTask: b, Kind: models.RelationshipBlocks}))
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: a, ToTask: c, Kind: models.RelationshipBlocks}))

	assert.NoError(t, CheckCycle(ctx, s, b, d, models.RelationshipBlocks))
	assert.NoError(t, CheckCycle(ctx, s, c, d, models.RelationshipBlocks))
}

func TestCheckCycleDetectsTransitiveLoop(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	a := newTask(t, ctx, s, "pending")
	b := newTask(t, ctx, s, "pending")
	c := newTask(t, ctx, s, "pending")

	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: a, ToTask: b, Kind: models.RelationshipBlocks}))
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: b, ToTask: c, Kind: models.RelationshipBlocks}))

	err := CheckCycle(ctx, s, c, a, models.RelationshipBlocks)
	require.Error(t, err)
}

func TestCheckCycleIgnoresRelatesTo(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	a := newTask(t, ctx, s, "pending")
	b := newTask(t, ctx, s, "pending")
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: a, ToTask: b, Kind: models.RelationshipBlocks}))

	assert.NoError(t, CheckCycle(ctx, s, b, a, models.RelationshipRelatesTo))
}

func TestComputeBlockedAndNewlyUnblocked(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	resolver := flow.New(workflowconfig.DefaultWorkflow())

	blocker := newTask(t, ctx, s, "pending")
	blocked := newTask(t, ctx, s, "pending")
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: blocker, ToTask: blocked, Kind: models.RelationshipBlocks}))

	records, err := ComputeBlocked(ctx, s, resolver, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, blocked, records[0].Task.ID)
	require.Len(t, records[0].Blockers, 1)
	assert.Equal(t, blocker, records[0].Blockers[0].TaskID)

	unblocked, err := NewlyUnblocked(ctx, s, resolver, blocker)
	require.NoError(t, err)
	assert.Empty(t, unblocked, "blocker hasn't completed yet")

	blockerTask, _ := s.GetTask(ctx, blocker)
	summary := ""
	for i := 0; i < 350; i++ {
		summary += "x"
	}
	blockerTask.Status = "completed"
	blockerTask.Summary = &summary
	require.NoError(t, s.UpdateTask(ctx, blockerTask))

	unblocked, err = NewlyUnblocked(ctx, s, resolver, blocker)
	require.NoError(t, err)
	require.Len(t, unblocked, 1)
	assert.Equal(t, blocked, unblocked[0].ID)
}
