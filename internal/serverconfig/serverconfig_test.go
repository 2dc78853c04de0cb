package serverconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orcaflow.toml")
	require.NoError(t, os.WriteFile(path, []byte("database_path = \"custom.db\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.DatabasePath)
	assert.Equal(t, Default().WorkflowDir, cfg.WorkflowDir)
	assert.Equal(t, Default().LogLevel, cfg.LogLevel)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orcaflow.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not = = toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
