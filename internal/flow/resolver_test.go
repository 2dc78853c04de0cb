package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

func testConfig() *workflowconfig.WorkflowConfig {
	return workflowconfig.DefaultWorkflow()
}

func TestActiveFlowDefaultWhenNoTagsMatch(t *testing.T) {
	r := New(testConfig())
	name, seq, matched := r.ActiveFlow(workflowconfig.ContainerFeature, []string{"backend"})
	assert.Equal(t, "default_flow", name)
	assert.Equal(t, []string{"backlog", "in-progress", "in-review", "done"}, seq)
	assert.Nil(t, matched)
}

func TestActiveFlowTagMatchFirstWins(t *testing.T) {
	r := New(testConfig())
	name, seq, matched := r.ActiveFlow(workflowconfig.ContainerFeature, []string{"Prototype", "needs-review"})
	assert.Equal(t, "rapid_prototype_flow", name)
	assert.Equal(t, []string{"backlog", "in-progress", "done"}, seq)
	assert.Equal(t, []string{"Prototype"}, matched)
}

func TestPositionCaseAndSeparatorInsensitive(t *testing.T) {
	seq := []string{"in-progress", "in-review"}
	assert.Equal(t, 0, Position(seq, "In_Progress"))
	assert.Equal(t, 1, Position(seq, "IN-REVIEW"))
	assert.Equal(t, -1, Position(seq, "done"))
}

func TestIsTerminal(t *testing.T) {
	r := New(testConfig())
	assert.True(t, r.IsTerminal(workflowconfig.ContainerTask, "completed"))
	assert.False(t, r.IsTerminal(workflowconfig.ContainerTask, "pending"))
}

func TestRoleMapping(t *testing.T) {
	r := New(testConfig())
	assert.Equal(t, models.RoleQueue, r.Role(workflowconfig.ContainerTask, nil, "pending"))
	assert.Equal(t, models.RoleWork, r.Role(workflowconfig.ContainerTask, nil, "in-progress"))
	assert.Equal(t, models.RoleReview, r.Role(workflowconfig.ContainerTask, nil, "in-review"))
	assert.Equal(t, models.RoleTerminal, r.Role(workflowconfig.ContainerTask, nil, "completed"))
	assert.Equal(t, models.RoleBlocked, r.Role(workflowconfig.ContainerTask, nil, "blocked"))
}

func TestFlowPathContainsCurrentIffInFlow(t *testing.T) {
	r := New(testConfig())
	_, seq, _ := r.ActiveFlow(workflowconfig.ContainerTask, nil)
	assert.Contains(t, seq, "in-progress")
	assert.NotEqual(t, -1, Position(seq, "in-progress"))
	assert.Equal(t, -1, Position(seq, "nonexistent-status"))
}
