package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarpay/praxis-cli/config"
	"github.com/zarpay/praxis-cli/scaffold"
)

// newTestProject scaffolds a project with one compilable role and an
// isolated HOME so no user config leaks in.
func newTestProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	_, err := scaffold.Init(root, slog.Default())
	require.NoError(t, err)

	writeTestFile(t, filepath.Join(root, "responsibilities", "code-review.md"),
		"Review each change line by line.\n")
	writeTestFile(t, filepath.Join(root, "roles", "reviewer.md"),
		`---
alias: reviewer
description: Reviews changes line by line.
tools:
  - Read
  - Grep
responsibilities: responsibilities/code-review.md
---

Reviews every change before merge.
`)
	return root
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootCmd_Structure(t *testing.T) {
	cmd := rootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"compile", "check", "cache", "init", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("root"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func TestRootCmd_CommandFlags(t *testing.T) {
	cmd := rootCmd()

	compile, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)
	assert.NotNil(t, compile.Flags().Lookup("watch"))
	assert.NotNil(t, compile.Flags().Lookup("metrics-addr"))

	check, _, err := cmd.Find([]string{"check"})
	require.NoError(t, err)
	assert.NotNil(t, check.Flags().Lookup("force"))

	orphans, _, err := cmd.Find([]string{"cache", "orphans"})
	require.NoError(t, err)
	assert.NotNil(t, orphans.Flags().Lookup("prune"))
}

func TestLoadProject(t *testing.T) {
	root := newTestProject(t)

	env, err := loadProject(&rootOptions{root: root})
	require.NoError(t, err)

	assert.Equal(t, root, env.root)
	assert.Equal(t, root, env.layout.ContentRoot())
	assert.Equal(t, []string{"claude"}, env.cfg.Sinks)
	assert.NotNil(t, env.logger)
}

func TestLoadProject_NotAProject(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := loadProject(&rootOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a praxis project")
}

func TestSetupLogger_LevelAndOverride(t *testing.T) {
	ctx := context.Background()

	logger := setupLogger(config.LogConfig{Level: "info", Format: "text"}, "")
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))

	logger = setupLogger(config.LogConfig{Level: "error", Format: "text"}, "debug")
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug), "flag override wins over config")

	logger = setupLogger(config.LogConfig{Level: "warn", Format: "text"}, "")
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
}

func TestSetupLogger_JSONFormat(t *testing.T) {
	logger := setupLogger(config.LogConfig{Level: "info", Format: "json"}, "")
	_, ok := logger.Handler().(*slog.JSONHandler)
	assert.True(t, ok)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/proj", "roles"), resolvePath("/proj", "roles"))
	assert.Equal(t, "/abs/roles", resolvePath("/proj", "/abs/roles"))
}

func TestRelTo(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b.md"), relTo("/proj", "/proj/a/b.md"))
	assert.Equal(t, "/elsewhere/b.md", relTo("/proj", "/elsewhere/b.md"))
}

func TestExitError(t *testing.T) {
	bare := &exitError{code: 2}
	assert.Equal(t, "exit status 2", bare.Error())

	cause := fmt.Errorf("spec missing")
	wrapped := &exitError{code: 2, cause: cause}
	assert.Equal(t, "spec missing", wrapped.Error())
	assert.True(t, errors.Is(wrapped, cause))

	var exit *exitError
	require.True(t, errors.As(fmt.Errorf("outer: %w", wrapped), &exit))
	assert.Equal(t, 2, exit.code)
}
