// Package manifest reads role and reference documents: markdown files
// with an optional YAML front-matter block.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Document is a parsed markdown document. The front-matter block, when
// present, is exposed as a typed map; Body holds everything after it.
type Document struct {
	// Path is the path the document was loaded from, as given to Load.
	Path string

	// Frontmatter holds the parsed front-matter mapping. Empty when the
	// document has no front-matter block or the block is malformed.
	Frontmatter Frontmatter

	// Body is the document content with the front-matter block removed.
	Body string

	// FrontmatterErr records a malformed front-matter block. The document
	// still loads with an empty mapping so a single bad manifest never
	// aborts a batch; callers surface this as a diagnostic.
	FrontmatterErr error
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc := Parse(string(content))
	doc.Path = path
	return doc, nil
}

// Parse parses document content, extracting front-matter and body.
// Parsing never fails: malformed front-matter yields an empty mapping,
// the full content as body, and a non-nil FrontmatterErr.
func Parse(content string) *Document {
	doc := &Document{Frontmatter: Frontmatter{}}

	if !hasFrontmatterDelimiter(content) {
		doc.Body = content
		return doc
	}

	fm, body, err := extractFrontmatter(content)
	if err != nil {
		doc.Body = content
		doc.FrontmatterErr = err
		return doc
	}

	if fm != nil {
		doc.Frontmatter = fm
	}
	doc.Body = body
	return doc
}

// Body returns content with any leading front-matter block stripped.
// Content without a valid block is returned unchanged.
func Body(content string) string {
	if !hasFrontmatterDelimiter(content) {
		return content
	}
	_, body, err := extractFrontmatter(content)
	if err != nil {
		return content
	}
	return body
}

// LoadBody reads the document at path and returns its body with any
// front-matter block stripped. Callers are expected to have checked
// existence; a failed read is reported for skip-and-continue handling.
func LoadBody(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return Body(string(content)), nil
}

// hasFrontmatterDelimiter reports whether content opens with a
// front-matter delimiter line.
func hasFrontmatterDelimiter(content string) bool {
	return strings.HasPrefix(content, "---\n") || strings.HasPrefix(content, "---\r\n")
}

// extractFrontmatter parses the YAML front-matter block from content.
// Returns the parsed mapping, the remaining body, and any error.
func extractFrontmatter(content string) (Frontmatter, string, error) {
	const delimiter = "---"

	// Skip the opening delimiter
	start := len(delimiter)
	if len(content) > start && content[start] == '\r' {
		start++
	}
	if len(content) > start && content[start] == '\n' {
		start++
	}

	// Find the closing delimiter
	closeIdx := strings.Index(content[start:], "\n"+delimiter)
	if closeIdx == -1 {
		closeIdx = strings.Index(content[start:], "\r\n"+delimiter)
	}
	if closeIdx == -1 {
		return nil, content, fmt.Errorf("no closing front-matter delimiter")
	}

	yamlContent := content[start : start+closeIdx]

	// Body starts after the closing delimiter and its trailing newlines
	bodyStart := start + closeIdx + 1 + len(delimiter)
	for bodyStart < len(content) && (content[bodyStart] == '\n' || content[bodyStart] == '\r') {
		bodyStart++
	}

	body := ""
	if bodyStart < len(content) {
		body = content[bodyStart:]
	}

	fm, err := parseFrontmatter(yamlContent)
	if err != nil {
		return nil, content, err
	}

	return fm, body, nil
}

// ContentHash computes a SHA256 hash of the content.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
