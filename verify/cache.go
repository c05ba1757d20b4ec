package verify

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zarpay/praxis-cli/project"
)

// entryVersion is the cache file format version. Entries written by an
// older format are treated as misses and rewritten on the next check.
const entryVersion = 1

// Outcome is the verification result for one document.
type Outcome struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues"`
	Reason    string   `json:"reason"`
	// Severity is set only for non-compliant outcomes: "warning" for a
	// hedged verdict, "error" otherwise.
	Severity string `json:"severity,omitempty"`

	// Cached reports whether this outcome was served from the cache.
	// Not persisted.
	Cached bool `json:"-"`
}

// DocumentInfo identifies the verified document inside a cache entry.
type DocumentInfo struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	SpecPath string `json:"spec_path"`
}

// Entry is the persisted cache record.
type Entry struct {
	Version     int          `json:"version"`
	CachedAt    time.Time    `json:"cached_at"`
	ContentHash string       `json:"content_hash"`
	Document    DocumentInfo `json:"document"`
	Result      Outcome      `json:"result"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Files      int
	TotalBytes int64
	ByType     map[string]int
}

// Orphan is a cache file whose source document no longer exists.
type Orphan struct {
	CachePath string
	Type      string
	DocBase   string
	Reason    string
}

// Cache persists verification outcomes under a cache root, one JSON
// file per document, mirroring the per-type directory structure of the
// content root. The fingerprint lives inside the file, so a document
// always maps to the same cache file regardless of content; the
// historical layout with the fingerprint embedded in the filename is
// kept readable as a compatibility alias under the same tree.
type Cache struct {
	root        string
	contentRoot string
	logger      *slog.Logger
}

// NewCache creates a cache rooted at cacheRoot for documents under
// contentRoot.
func NewCache(cacheRoot, contentRoot string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		root:        cacheRoot,
		contentRoot: contentRoot,
		logger:      logger,
	}
}

// relPath normalizes docPath to a content-root-relative forward-slash
// path, the identity documents are cached under.
func (c *Cache) relPath(docPath string) string {
	rel := docPath
	if filepath.IsAbs(docPath) {
		if r, err := filepath.Rel(c.contentRoot, docPath); err == nil {
			rel = r
		}
	}
	return filepath.ToSlash(filepath.Clean(rel))
}

// PathFor returns the canonical cache file location for a document:
// the content-root-relative path with its extension replaced by .json,
// joined under the cache root.
func (c *Cache) PathFor(docPath string) string {
	rel := c.relPath(docPath)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".json"
	return filepath.Join(c.root, filepath.FromSlash(rel))
}

// PathForFingerprint returns the compatibility cache location with the
// fingerprint embedded in the filename. It resolves under the same
// per-type directory as PathFor.
func (c *Cache) PathForFingerprint(docPath, fingerprint string) string {
	rel := c.relPath(docPath)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + "_" + fingerprint + ".json"
	return filepath.Join(c.root, filepath.FromSlash(rel))
}

// Write persists a verification outcome. It never fails: any
// sanitization, serialization, or I/O problem removes the partial file
// and is reported at debug level only, because a cache failure must
// not fail the verification that produced the outcome.
func (c *Cache) Write(docPath, fingerprint string, outcome Outcome, doc DocumentInfo) {
	if err := c.writeEntry(docPath, fingerprint, outcome, doc); err != nil {
		c.logger.Debug("cache write failed",
			"path", docPath,
			"fingerprint", fingerprint,
			"error", err)
	}
}

// writeEntry is the fallible core of Write, separated so the failure
// path stays observable in tests.
func (c *Cache) writeEntry(docPath, fingerprint string, outcome Outcome, doc DocumentInfo) error {
	entry := Entry{
		Version:     entryVersion,
		CachedAt:    time.Now().UTC(),
		ContentHash: fingerprint,
		Document: DocumentInfo{
			Path:     c.relPath(doc.Path),
			Type:     doc.Type,
			SpecPath: filepath.ToSlash(doc.SpecPath),
		},
		Result: sanitizeOutcome(outcome),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// The serialized form must parse back before it is committed;
	// a cache file that cannot be read is worse than no cache file.
	var check Entry
	if err := json.Unmarshal(data, &check); err != nil {
		return fmt.Errorf("cache entry does not round-trip: %w", err)
	}

	target := c.PathFor(docPath)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit cache entry: %w", err)
	}

	return nil
}

// Read returns the cached outcome for a document at a fingerprint, or
// a miss. Hits require the file to parse, its version to match the
// current format, and its stored fingerprint to equal the requested
// one. A corrupt file is deleted on detection. Read never fails.
func (c *Cache) Read(docPath, fingerprint string) (*Outcome, bool) {
	path := c.PathFor(docPath)
	data, err := os.ReadFile(path)
	if err != nil {
		// Fall back to the historical fingerprint-in-filename layout.
		path = c.PathForFingerprint(docPath, fingerprint)
		if data, err = os.ReadFile(path); err != nil {
			return nil, false
		}
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Debug("removing corrupt cache entry", "path", path, "error", err)
		os.Remove(path)
		return nil, false
	}

	if entry.Version != entryVersion {
		return nil, false
	}
	if entry.ContentHash != fingerprint {
		return nil, false
	}

	outcome := entry.Result
	outcome.Cached = true
	return &outcome, true
}

// Stats scans the cache tree and reports file count, total byte size,
// and a per-type count keyed by top-level directory. Unreadable
// entries are skipped rather than aborting the scan.
func (c *Cache) Stats() (*Stats, error) {
	stats := &Stats{ByType: make(map[string]int)}

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			c.logger.Debug("skipping unreadable cache path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			c.logger.Debug("skipping unreadable cache file", "path", path, "error", err)
			return nil
		}

		stats.Files++
		stats.TotalBytes += info.Size()
		if t := c.typeOf(path); t != "" {
			stats.ByType[t]++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan cache: %w", err)
	}

	return stats, nil
}

// Orphans reports cache files whose source document no longer exists.
// For each cache file the (type, document base name) key is compared
// against the documents currently present in that type's content
// directory. Discovery only; deletion is the caller's call.
func (c *Cache) Orphans() ([]Orphan, error) {
	existing := make(map[string]map[string]bool, len(project.Types))
	for _, t := range project.Types {
		existing[t] = c.scanDocuments(filepath.Join(c.contentRoot, t))
	}

	var orphans []Orphan
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			c.logger.Debug("skipping unreadable cache path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		docType := c.typeOf(path)
		base := docBase(d.Name())
		if docs, ok := existing[docType]; ok && docs[base] {
			return nil
		}

		orphans = append(orphans, Orphan{
			CachePath: path,
			Type:      docType,
			DocBase:   base,
			Reason:    "document missing",
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan cache: %w", err)
	}

	return orphans, nil
}

// typeOf returns the top-level directory of a cache file under the
// cache root, which mirrors the document type.
func (c *Cache) typeOf(path string) string {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return ""
	}
	first, _, found := strings.Cut(filepath.ToSlash(rel), "/")
	if !found {
		return ""
	}
	return first
}

// scanDocuments collects the base names of source documents under a
// type directory, skipping README.md and underscore-prefixed files
// (templates and other non-documents by convention).
func (c *Cache) scanDocuments(dir string) map[string]bool {
	docs := make(map[string]bool)
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == "README.md" || strings.HasPrefix(name, "_") {
			return nil
		}
		docs[strings.TrimSuffix(name, filepath.Ext(name))] = true
		return nil
	})
	return docs
}

// docBase derives the document base name from a cache file name,
// stripping the .json suffix and any embedded fingerprint from the
// compatibility layout.
func docBase(name string) string {
	base := strings.TrimSuffix(name, ".json")
	if i := strings.LastIndex(base, "_"); i > 0 {
		if suffix := base[i+1:]; len(suffix) == fingerprintLen && isHex(suffix) {
			base = base[:i]
		}
	}
	return base
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// sanitizeOutcome strips control characters that would corrupt the
// persisted entry or garble terminals replaying it. Newlines and tabs
// in reasons are kept.
func sanitizeOutcome(o Outcome) Outcome {
	clean := o
	clean.Reason = sanitizeString(o.Reason)
	clean.Severity = sanitizeString(o.Severity)
	if o.Issues != nil {
		clean.Issues = make([]string, len(o.Issues))
		for i, issue := range o.Issues {
			clean.Issues[i] = sanitizeString(issue)
		}
	}
	return clean
}

func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
