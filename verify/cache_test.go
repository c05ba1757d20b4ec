package verify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, string, string) {
	t.Helper()
	contentRoot := t.TempDir()
	cacheRoot := filepath.Join(contentRoot, ".praxis", "cache")
	return NewCache(cacheRoot, contentRoot, nil), cacheRoot, contentRoot
}

func writeDoc(t *testing.T, root string, rel string, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCache_WriteRead_RoundTrip(t *testing.T) {
	cache, cacheRoot, contentRoot := newTestCache(t)
	docPath := writeDoc(t, contentRoot, "roles/reviewer.md", "body")

	outcome := Outcome{
		Compliant: false,
		Issues:    []string{"missing title", "stale link"},
		Reason:    "no\n- missing title\n- stale link",
		Severity:  SeverityError,
	}
	cache.Write(docPath, "deadbeef", outcome, DocumentInfo{
		Path:     docPath,
		Type:     "roles",
		SpecPath: ".praxis/specs/roles.md",
	})

	got, ok := cache.Read(docPath, "deadbeef")
	require.True(t, ok, "expected a cache hit")
	assert.True(t, got.Cached)
	assert.False(t, got.Compliant)
	assert.Equal(t, outcome.Issues, got.Issues)
	assert.Equal(t, outcome.Reason, got.Reason)
	assert.Equal(t, SeverityError, got.Severity)

	// The entry lives at the canonical location and records its inputs.
	data, err := os.ReadFile(filepath.Join(cacheRoot, "roles", "reviewer.json"))
	require.NoError(t, err)
	var entry Entry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, entryVersion, entry.Version)
	assert.Equal(t, "deadbeef", entry.ContentHash)
	assert.Equal(t, "roles/reviewer.md", entry.Document.Path)
	assert.False(t, entry.CachedAt.IsZero())
}

func TestCache_Read_FingerprintMismatch(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)
	docPath := writeDoc(t, contentRoot, "roles/reviewer.md", "body")

	cache.Write(docPath, "deadbeef", Outcome{Compliant: true, Reason: "yes"}, DocumentInfo{Path: docPath, Type: "roles"})

	_, ok := cache.Read(docPath, "0badf00d")
	assert.False(t, ok, "stale fingerprint must miss")

	// The stale entry stays on disk until the next write replaces it.
	_, err := os.Stat(cache.PathFor(docPath))
	assert.NoError(t, err)
}

func TestCache_Read_CompatFingerprintFilename(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)
	docPath := writeDoc(t, contentRoot, "context/stack.md", "body")

	entry := Entry{
		Version:     entryVersion,
		ContentHash: "cafe0123",
		Document:    DocumentInfo{Path: "context/stack.md", Type: "context"},
		Result:      Outcome{Compliant: true, Reason: "yes"},
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	require.NoError(t, err)

	legacy := cache.PathForFingerprint(docPath, "cafe0123")
	require.NoError(t, os.MkdirAll(filepath.Dir(legacy), 0755))
	require.NoError(t, os.WriteFile(legacy, data, 0644))

	got, ok := cache.Read(docPath, "cafe0123")
	require.True(t, ok, "fingerprint-in-filename entries must stay readable")
	assert.True(t, got.Compliant)
	assert.True(t, got.Cached)
}

func TestCache_Read_CorruptEntryDeleted(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)
	docPath := writeDoc(t, contentRoot, "roles/reviewer.md", "body")

	target := cache.PathFor(docPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("{not json"), 0644))

	_, ok := cache.Read(docPath, "deadbeef")
	assert.False(t, ok)

	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err), "corrupt entry must be removed")
}

func TestCache_Read_VersionMismatch(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)
	docPath := writeDoc(t, contentRoot, "roles/reviewer.md", "body")

	entry := Entry{
		Version:     entryVersion + 1,
		ContentHash: "deadbeef",
		Result:      Outcome{Compliant: true},
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	target := cache.PathFor(docPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, data, 0644))

	_, ok := cache.Read(docPath, "deadbeef")
	assert.False(t, ok, "unknown entry version must miss")
}

func TestCache_Write_NeverFails(t *testing.T) {
	contentRoot := t.TempDir()
	// The cache root is occupied by a regular file, so every write
	// must fail internally; Write has to swallow that.
	blocked := filepath.Join(contentRoot, "cache")
	require.NoError(t, os.WriteFile(blocked, []byte("in the way"), 0644))
	cache := NewCache(blocked, contentRoot, nil)

	docPath := writeDoc(t, contentRoot, "roles/reviewer.md", "body")

	assert.NotPanics(t, func() {
		cache.Write(docPath, "deadbeef", Outcome{Compliant: true}, DocumentInfo{Path: docPath, Type: "roles"})
	})
	assert.Error(t, cache.writeEntry(docPath, "deadbeef", Outcome{Compliant: true}, DocumentInfo{Path: docPath, Type: "roles"}))
}

func TestCache_Write_SanitizesControlCharacters(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)
	docPath := writeDoc(t, contentRoot, "roles/reviewer.md", "body")

	cache.Write(docPath, "deadbeef", Outcome{
		Reason:   "no\x1b[31m bad\x00 but keep\nnewline and\ttab",
		Issues:   []string{"first\x07 issue"},
		Severity: SeverityError,
	}, DocumentInfo{Path: docPath, Type: "roles"})

	got, ok := cache.Read(docPath, "deadbeef")
	require.True(t, ok)
	assert.Equal(t, "no[31m bad but keep\nnewline and\ttab", got.Reason)
	assert.Equal(t, []string{"first issue"}, got.Issues)
}

func TestCache_PathFor(t *testing.T) {
	cache, cacheRoot, contentRoot := newTestCache(t)

	tests := []struct {
		name    string
		docPath string
		want    string
	}{
		{
			name:    "relative path",
			docPath: "roles/reviewer.md",
			want:    filepath.Join(cacheRoot, "roles", "reviewer.json"),
		},
		{
			name:    "nested subdirectories mirrored",
			docPath: "refs/apis/payments.md",
			want:    filepath.Join(cacheRoot, "refs", "apis", "payments.json"),
		},
		{
			name:    "absolute path relativized against content root",
			docPath: filepath.Join(contentRoot, "context", "stack.md"),
			want:    filepath.Join(cacheRoot, "context", "stack.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cache.PathFor(tt.docPath))
		})
	}

	assert.Equal(t,
		filepath.Join(cacheRoot, "roles", "reviewer_deadbeef.json"),
		cache.PathForFingerprint("roles/reviewer.md", "deadbeef"))
}

func TestCache_Stats(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)

	for _, rel := range []string{"roles/a.md", "roles/b.md", "context/c.md"} {
		docPath := writeDoc(t, contentRoot, rel, "body")
		cache.Write(docPath, "deadbeef", Outcome{Compliant: true, Reason: "yes"}, DocumentInfo{Path: docPath})
	}

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Positive(t, stats.TotalBytes)
	assert.Equal(t, map[string]int{"roles": 2, "context": 1}, stats.ByType)
}

func TestCache_Stats_EmptyCache(t *testing.T) {
	cache, _, _ := newTestCache(t)

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Files)
	assert.Zero(t, stats.TotalBytes)
}

func TestCache_Orphans(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)

	// Live document with a cache entry: not an orphan.
	alive := writeDoc(t, contentRoot, "roles/reviewer.md", "body")
	cache.Write(alive, "deadbeef", Outcome{Compliant: true}, DocumentInfo{Path: alive, Type: "roles"})

	// Cache entry whose document was deleted: orphan.
	gone := writeDoc(t, contentRoot, "roles/retired.md", "body")
	cache.Write(gone, "deadbeef", Outcome{Compliant: true}, DocumentInfo{Path: gone, Type: "roles"})
	require.NoError(t, os.Remove(gone))

	// Legacy fingerprint-in-filename entry for a live document: the
	// embedded fingerprint must be stripped before matching.
	legacyDoc := writeDoc(t, contentRoot, "context/stack.md", "body")
	legacy := cache.PathForFingerprint(legacyDoc, "cafe0123")
	require.NoError(t, os.MkdirAll(filepath.Dir(legacy), 0755))
	require.NoError(t, os.WriteFile(legacy, []byte("{}"), 0644))

	orphans, err := cache.Orphans()
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "roles", orphans[0].Type)
	assert.Equal(t, "retired", orphans[0].DocBase)
	assert.Equal(t, "document missing", orphans[0].Reason)
	assert.True(t, strings.HasSuffix(orphans[0].CachePath, filepath.Join("roles", "retired.json")))
}

func TestCache_Orphans_SkipsNonDocuments(t *testing.T) {
	cache, _, contentRoot := newTestCache(t)

	// README.md and underscore-prefixed files are not documents, so
	// cache entries named after them count as orphans even while the
	// files exist.
	writeDoc(t, contentRoot, "roles/README.md", "readme")
	writeDoc(t, contentRoot, "roles/_template.md", "template")
	for _, rel := range []string{"roles/README.md", "roles/_template.md"} {
		cache.Write(filepath.Join(contentRoot, filepath.FromSlash(rel)), "deadbeef",
			Outcome{Compliant: true}, DocumentInfo{})
	}

	orphans, err := cache.Orphans()
	require.NoError(t, err)
	assert.Len(t, orphans, 2)
}

func TestDocBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"reviewer.json", "reviewer"},
		{"reviewer_deadbeef.json", "reviewer"},
		{"multi_word_name.json", "multi_word_name"},
		{"multi_word_deadbeef.json", "multi_word"},
		{"name_notahash.json", "name_notahash"},
		{"_deadbeef.json", "_deadbeef"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, docBase(tt.in), "docBase(%q)", tt.in)
	}
}
