package nexttask

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

func mkTask(ctx context.Context, t *testing.T, s *storetest.MemStore, priority models.Priority, complexity *int) models.ID {
	t.Helper()
	id := models.NewID()
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: id, Slug: id.String(), Title: "t", Status: "pending", Priority: priority, Complexity: complexity}))
	return id
}

func ptr(i int) *int { return &i }

func TestRecommendRejectsOutOfRangeLimit(t *testing.T) {
	s := storetest.New()
	resolver := flow.New(workflowconfig.DefaultWorkflow())
	_, _, err := Recommend(context.Background(), s, resolver, store.TaskFilter{}, 0)
	assert.Error(t, err)
	_, _, err = Recommend(context.Background(), s, resolver, store.TaskFilter{}, 21)
	assert.Error(t, err)
}

func TestRecommendFullParallelStart(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	resolver := flow.New(workflowconfig.DefaultWorkflow())

	var ids []models.ID
	for i := 0; i < 4; i++ {
		ids = append(ids, mkTask(ctx, t, s, models.PriorityMedium, ptr(5)))
	}

	recs, total, err := Recommend(ctx, s, resolver, store.TaskFilter{}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, recs, 4)
	for i, r := range recs {
		assert.Equal(t, ids[i], r.ID, "creation order must be the stable tiebreak")
	}
}

func TestRecommendSortsByPriorityThenComplexity(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	resolver := flow.New(workflowconfig.DefaultWorkflow())

	low := mkTask(ctx, t, s, models.PriorityLow, ptr(1))
	highComplex := mkTask(ctx, t, s, models.PriorityHigh, ptr(9))
	highSimple := mkTask(ctx, t, s, models.PriorityHigh, ptr(2))

	recs, _, err := Recommend(ctx, s, resolver, store.TaskFilter{}, 20)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, highSimple, recs[0].ID)
	assert.Equal(t, highComplex, recs[1].ID)
	assert.Equal(t, low, recs[2].ID)
}

func TestRecommendExcludesBlockedTasks(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	resolver := flow.New(workflowconfig.DefaultWorkflow())

	blocker := mkTask(ctx, t, s, models.PriorityMedium, ptr(5))
	blocked := mkTask(ctx, t, s, models.PriorityMedium, ptr(1))
	require.NoError(t, s.CreateDependency(ctx, &models.Dependency{ID: models.NewID(), FromTask: blocker, ToTask: blocked, Kind: models.RelationshipBlocks}))

	recs, total, err := Recommend(ctx, s, resolver, store.TaskFilter{}, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, recs, 1)
	assert.Equal(t, blocker, recs[0].ID)
}
