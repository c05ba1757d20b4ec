// Package resolve expands manifest reference patterns into concrete
// project-relative file paths.
package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zarpay/praxis-cli/diag"
)

// Expand resolves a single pattern against the tree rooted at root and
// returns matching file paths relative to root, forward-slashed.
//
// A literal pattern (no glob characters) resolves to itself when the
// file exists; a missing literal and a zero-match glob produce distinct
// diagnostics because they indicate different author mistakes (a typo
// versus an overly narrow pattern). The diagnostic is nil on success.
func Expand(root, pattern string) ([]string, *diag.Diag) {
	if !containsGlob(pattern) {
		abs := filepath.Join(root, filepath.FromSlash(pattern))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			return nil, &diag.Diag{
				Code:    diag.CodeFileNotFound,
				Subject: pattern,
				Message: "referenced file not found",
			}
		}
		return []string{filepath.ToSlash(filepath.Clean(pattern))}, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, &diag.Diag{
			Code:    diag.CodeBadPattern,
			Subject: pattern,
			Message: "invalid glob pattern",
		}
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(root, match)
		if err != nil {
			continue
		}
		files = append(files, filepath.ToSlash(rel))
	}

	// Glob match order is not specified; pin it lexicographically so
	// profile section content is deterministic.
	sort.Strings(files)

	if len(files) == 0 {
		return nil, &diag.Diag{
			Code:    diag.CodeGlobNoMatch,
			Subject: pattern,
			Message: "glob pattern matched zero files",
		}
	}

	return files, nil
}

// ExpandAll resolves every pattern in declaration order, concatenating
// per-pattern results and dropping duplicates across the whole set.
// First occurrence wins, so declaration order is preserved.
func ExpandAll(root string, patterns []string) ([]string, []diag.Diag) {
	var resolved []string
	var diags []diag.Diag
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, d := Expand(root, pattern)
		if d != nil {
			diags = append(diags, *d)
			continue
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, diags
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
