package workflowconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	l := NewLoader()
	dir := t.TempDir()

	cfg, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkflow().StatusProgression.Tasks.DefaultFlow, cfg.StatusProgression.Tasks.DefaultFlow)
}

func TestLoadParsesYAMLAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, `
status_progression:
  projects:
    default_flow: ["planning", "active", "completed"]
  features:
    default_flow: ["backlog", "in-progress", "done"]
  tasks:
    default_flow: ["Pending", "In_Progress", "Completed"]
    terminal_statuses: ["Completed"]
`)

	l := NewLoader()
	cfg, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pending", "in-progress", "completed"}, cfg.StatusProgression.Tasks.DefaultFlow)
}

func TestLoadInvalidYAMLFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "not: [valid yaml")

	l := NewLoader()
	cfg, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkflow().StatusProgression.Tasks.DefaultFlow, cfg.StatusProgression.Tasks.DefaultFlow)
}

func TestLoadCachesUntilTTLOrReload(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, `
status_progression:
  projects:
    default_flow: ["planning", "active", "completed"]
  features:
    default_flow: ["backlog", "in-progress", "done"]
  tasks:
    default_flow: ["pending", "done"]
`)

	l := NewLoader()
	cfg1, err := l.Load(dir)
	require.NoError(t, err)

	// Change the file on disk; the cached copy must still be served.
	writeWorkflow(t, dir, `
status_progression:
  projects:
    default_flow: ["planning", "active", "completed"]
  features:
    default_flow: ["backlog", "in-progress", "done"]
  tasks:
    default_flow: ["pending", "working", "done"]
`)
	cfg2, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg1.StatusProgression.Tasks.DefaultFlow, cfg2.StatusProgression.Tasks.DefaultFlow)

	l.Reload(dir)
	cfg3, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pending", "working", "done"}, cfg3.StatusProgression.Tasks.DefaultFlow)
}

func TestLoadMissingFlowMappingTargetFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, `
status_progression:
  features:
    default_flow: ["backlog", "done"]
    flow_mappings:
      - tags: ["prototype"]
        flow: "does_not_exist"
`)

	l := NewLoader()
	cfg, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkflow().StatusProgression.Features.DefaultFlow, cfg.StatusProgression.Features.DefaultFlow)
}

func TestCacheTTLExpires(t *testing.T) {
	l := NewLoader()
	dir := t.TempDir()
	writeWorkflow(t, dir, `
status_progression:
  projects:
    default_flow: ["planning", "active", "completed"]
  features:
    default_flow: ["backlog", "in-progress", "done"]
  tasks:
    default_flow: ["pending", "done"]
`)
	_, err := l.Load(dir)
	require.NoError(t, err)

	key, _ := filepath.Abs(dir)
	l.mu.Lock()
	entry := l.cache[key]
	entry.expiresAt = time.Now().Add(-time.Second)
	l.cache[key] = entry
	l.mu.Unlock()

	writeWorkflow(t, dir, `
status_progression:
  projects:
    default_flow: ["planning", "active", "completed"]
  features:
    default_flow: ["backlog", "in-progress", "done"]
  tasks:
    default_flow: ["pending", "working", "done"]
`)
	cfg, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pending", "working", "done"}, cfg.StatusProgression.Tasks.DefaultFlow)
}

func writeWorkflow(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}
