package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarpay/praxis-cli/config"
)

func TestRunCompile_Batch(t *testing.T) {
	root := newTestProject(t)

	err := runCompile(&rootOptions{root: root}, nil, false, "")
	require.NoError(t, err)

	profile, err := os.ReadFile(filepath.Join(root, "profiles", "reviewer.md"))
	require.NoError(t, err)
	assert.Contains(t, string(profile), "# Role")
	assert.Contains(t, string(profile), "Reviews every change before merge.")
	assert.Contains(t, string(profile), "# Responsibilities")
	assert.Contains(t, string(profile), "Review each change line by line.")

	agent, err := os.ReadFile(filepath.Join(root, ".claude", "agents", "reviewer.md"))
	require.NoError(t, err)
	assert.Contains(t, string(agent), "name: reviewer")
	assert.Contains(t, string(agent), "description: Reviews changes line by line.")
}

func TestRunCompile_NamedRole(t *testing.T) {
	root := newTestProject(t)

	err := runCompile(&rootOptions{root: root}, []string{"reviewer"}, false, "")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "profiles", "reviewer.md"))
}

func TestRunCompile_UnknownRole(t *testing.T) {
	root := newTestProject(t)

	err := runCompile(&rootOptions{root: root}, []string{"ghost"}, false, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunCompile_WatchRejectsRoleArgs(t *testing.T) {
	root := newTestProject(t)

	err := runCompile(&rootOptions{root: root}, []string{"reviewer"}, true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch")
}

func TestRolePath(t *testing.T) {
	rolesDir := t.TempDir()
	writeTestFile(t, filepath.Join(rolesDir, "reviewer.md"), "---\nalias: reviewer\n---\n")

	path, err := rolePath(rolesDir, "reviewer")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(rolesDir, "reviewer.md"), path)

	path, err = rolePath(rolesDir, "reviewer.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(rolesDir, "reviewer.md"), path)

	_, err = rolePath(rolesDir, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `role "ghost" not found`)
}

func TestBuildSinks_Default(t *testing.T) {
	cfg := config.DefaultConfig()

	sinks, err := buildSinks(cfg, "/proj")
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	assert.Equal(t, "profile-dir", sinks[0].Name())
	assert.Equal(t, "claude", sinks[1].Name())
}

func TestBuildSinks_ProfileDirDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Project.ProfileDir = config.ProfileDir{Disabled: true}

	sinks, err := buildSinks(cfg, "/proj")
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.Equal(t, "claude", sinks[0].Name())
}

func TestBuildSinks_MissingOutputDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SinkOptions = nil

	_, err := buildSinks(cfg, "/proj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output_dir")
}

func TestBuildSinks_UnknownSink(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sinks = []string{"cursor"}
	cfg.SinkOptions = map[string]config.SinkOptions{"cursor": {OutputDir: ".cursor/agents"}}

	_, err := buildSinks(cfg, "/proj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown sink "cursor"`)
}

func TestOutputDirNames(t *testing.T) {
	cfg := config.DefaultConfig()
	names := outputDirNames(cfg)
	assert.Contains(t, names, "profiles")
	assert.Contains(t, names, ".claude")

	cfg.Project.ProfileDir = config.ProfileDir{Disabled: true}
	names = outputDirNames(cfg)
	assert.NotContains(t, names, "profiles")
}
