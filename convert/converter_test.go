package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head><title>Deploy Guide</title></head>
<body>
<nav><a href="/">Home</a><a href="/docs">Docs</a></nav>
<article>
<h1>Deploy Guide</h1>
<p>Deployments run from the main branch after every merge. The pipeline
builds the binary, runs the test suite, and pushes the release artifact
to the registry before rolling instances one at a time.</p>
<p>Rollbacks reuse the previous artifact and never rebuild from source,
so a rollback completes in under a minute on a healthy cluster.</p>
</article>
<footer>Copyright</footer>
</body>
</html>`

func TestConverter_Convert_ExtractsContent(t *testing.T) {
	c := NewConverter()

	result, err := c.Convert("deploy.html", []byte(sampleHTML))
	require.NoError(t, err)

	assert.Equal(t, "Deploy Guide", result.Title)
	assert.Contains(t, result.Markdown, "Deployments run from the main branch")
	assert.Contains(t, result.Markdown, "Rollbacks reuse the previous artifact")
}

func TestConverter_Convert_FallsBackOnUnreadableInput(t *testing.T) {
	c := NewConverter()

	// Too little content for article extraction; the whole document is
	// converted instead, with script blocks stripped.
	content := `<html><head><title>Tiny</title><script>alert(1)</script></head>` +
		`<body><p>One short line.</p></body></html>`

	result, err := c.Convert("tiny.html", []byte(content))
	require.NoError(t, err)

	assert.Contains(t, result.Markdown, "One short line.")
	assert.NotContains(t, result.Markdown, "alert(1)")
	assert.Equal(t, "Tiny", result.Title)
}

func TestConverter_MarkdownBody_SingleHeading(t *testing.T) {
	c := NewConverter()

	body, err := c.MarkdownBody("deploy.html", []byte(sampleHTML))
	require.NoError(t, err)

	// Whichever extraction path ran, the title must appear exactly once
	// as an H1.
	assert.Equal(t, 1, strings.Count("\n"+body, "\n# Deploy Guide"))
	assert.Contains(t, body, "Deployments run from the main branch")
}

func TestConverter_MarkdownBody_PrefixesMissingTitle(t *testing.T) {
	c := NewConverter()

	content := `<html><head><title>Style Rules</title></head>` +
		`<body><p>Use tabs for indentation in Go files.</p></body></html>`

	body, err := c.MarkdownBody("style.html", []byte(content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(body, "# Style Rules"), "body should open with the title heading, got: %q", body)
	assert.Contains(t, body, "Use tabs for indentation")
}

func TestCleanMarkdown_CollapsesBlankRuns(t *testing.T) {
	in := "line one\n\n\n\n\n\nline two  \n"

	out := cleanMarkdown(in)

	assert.Equal(t, "line one\n\n\nline two", out)
}

func TestExtractMarkdownTitle(t *testing.T) {
	assert.Equal(t, "First", extractMarkdownTitle("intro\n# First\n# Second\n"))
	assert.Equal(t, "", extractMarkdownTitle("no headings here\n"))
}
