// Package scaffold creates the initial praxis project tree: the
// .praxis directory with default config and per-type specification
// templates, the content type directories, and a starter role.
package scaffold

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zarpay/praxis-cli/config"
	"github.com/zarpay/praxis-cli/project"
)

// Result reports what Init did, path by path.
type Result struct {
	// Created lists paths written by this run.
	Created []string
	// Skipped lists paths that already existed and were left alone.
	Skipped []string
}

// Init scaffolds a praxis project in dir, creating it if needed.
// Existing files are never overwritten; they are recorded as skipped
// so re-running init on a live project is safe.
func Init(dir string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	layout := project.NewLayout(dir, "")
	if err := layout.EnsureDirectories(); err != nil {
		return nil, err
	}

	result := &Result{}

	if err := writeConfig(layout.ConfigPath(), result); err != nil {
		return nil, err
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(layout.TypePath(project.TypeRoles), "_template.md"), roleTemplate()},
		{filepath.Join(layout.TypePath(project.TypeRoles), "README.md"), rolesReadme()},
	}
	for _, t := range project.Types {
		files = append(files, struct {
			path    string
			content string
		}{layout.SpecPath(t), specTemplate(t)})
	}

	for _, f := range files {
		if err := writeNew(f.path, f.content, result); err != nil {
			return nil, err
		}
	}

	profilesDir := filepath.Join(dir, config.DefaultConfig().Project.ProfileDir.Path)
	if err := os.MkdirAll(profilesDir, 0755); err != nil {
		return nil, fmt.Errorf("create profiles directory: %w", err)
	}

	for _, p := range result.Created {
		logger.Debug("created", "path", p)
	}
	for _, p := range result.Skipped {
		logger.Debug("kept existing", "path", p)
	}

	return result, nil
}

// writeConfig writes the default config unless one already exists.
func writeConfig(path string, result *Result) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	if err := config.DefaultConfig().SaveToFile(path); err != nil {
		return err
	}
	result.Created = append(result.Created, path)
	return nil
}

// writeNew writes content to path unless the file already exists.
func writeNew(path, content string, result *Result) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
