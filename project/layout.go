// Package project locates and describes a praxis project tree: the
// .praxis marker directory, the per-type content directories, and the
// validation cache location.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Directory constants for the .praxis structure.
const (
	RootDir    = ".praxis"
	ConfigFile = "config.yaml"
	SpecsDir   = "specs"
	CacheDir   = "cache"
)

// Document type directories under the content root. Each type has a
// governing specification at <specs>/<type>.md.
const (
	TypeRoles            = "roles"
	TypeConstitution     = "constitution"
	TypeContext          = "context"
	TypeResponsibilities = "responsibilities"
	TypeRefs             = "refs"
)

// Types lists the known document types in scan order.
var Types = []string{
	TypeRoles,
	TypeConstitution,
	TypeContext,
	TypeResponsibilities,
	TypeRefs,
}

// KnownType reports whether name is a known document type.
func KnownType(name string) bool {
	for _, t := range Types {
		if t == name {
			return true
		}
	}
	return false
}

// Layout provides path operations for one praxis project.
type Layout struct {
	root        string
	contentRoot string
}

// NewLayout creates a layout for the project rooted at root. A
// relative contentRoot is resolved against root; empty or "." keeps
// the type directories directly under the project root.
func NewLayout(root, contentRoot string) *Layout {
	if contentRoot == "" || contentRoot == "." {
		contentRoot = root
	} else if !filepath.IsAbs(contentRoot) {
		contentRoot = filepath.Join(root, contentRoot)
	}
	return &Layout{root: root, contentRoot: contentRoot}
}

// Root returns the project root directory.
func (l *Layout) Root() string {
	return l.root
}

// ContentRoot returns the directory holding the type directories.
func (l *Layout) ContentRoot() string {
	return l.contentRoot
}

// PraxisPath returns the full path to the .praxis directory.
func (l *Layout) PraxisPath() string {
	return filepath.Join(l.root, RootDir)
}

// ConfigPath returns the path to the project config file.
func (l *Layout) ConfigPath() string {
	return filepath.Join(l.PraxisPath(), ConfigFile)
}

// SpecsPath returns the path to the per-type specification directory.
func (l *Layout) SpecsPath() string {
	return filepath.Join(l.PraxisPath(), SpecsDir)
}

// SpecPath returns the path to the specification governing a type.
func (l *Layout) SpecPath(docType string) string {
	return filepath.Join(l.SpecsPath(), docType+".md")
}

// CachePath returns the validation cache root.
func (l *Layout) CachePath() string {
	return filepath.Join(l.PraxisPath(), CacheDir)
}

// TypePath returns the content directory for a document type.
func (l *Layout) TypePath(docType string) string {
	return filepath.Join(l.contentRoot, docType)
}

// Rel returns path relative to the content root, forward-slashed.
// Accepts absolute paths and paths already relative to the content
// root.
func (l *Layout) Rel(path string) (string, error) {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(l.contentRoot, path)
		if err != nil {
			return "", fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = r
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path outside content root: %s", path)
	}
	return rel, nil
}

// DocumentType classifies a document by the first path segment under
// the content root. Unknown segments are an error: only typed
// documents have a governing specification.
func (l *Layout) DocumentType(path string) (string, error) {
	rel, err := l.Rel(path)
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(rel, "/")
	if !KnownType(first) {
		return "", fmt.Errorf("document is not under a known type directory (%s): %s",
			strings.Join(Types, ", "), path)
	}
	return first, nil
}

// EnsureDirectories creates the .praxis structure and the per-type
// content directories if they do not exist.
func (l *Layout) EnsureDirectories() error {
	dirs := []string{
		l.PraxisPath(),
		l.SpecsPath(),
		l.CachePath(),
	}
	for _, t := range Types {
		dirs = append(dirs, l.TypePath(t))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// FindRoot walks up from startDir to the first directory containing a
// .praxis marker. Commands that need a project abort with this error
// when no marker exists.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, RootDir)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a praxis project (no %s directory found above %s)", RootDir, startDir)
		}
		dir = parent
	}
}
