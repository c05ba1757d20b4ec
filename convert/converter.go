// Package convert turns HTML reference documents into markdown so they
// can be inlined into profiles alongside native markdown references.
package convert

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Pre-compiled regexes to avoid ReDoS with runtime compilation
var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// Result contains the outcome of an HTML to markdown conversion.
type Result struct {
	Title    string
	Markdown string
}

// Converter converts HTML reference documents to markdown.
type Converter struct {
	converter *md.Converter
}

// NewConverter creates a new HTML to markdown converter.
func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)

	// GitHub-flavored output keeps tables and fenced code blocks intact
	converter.Use(plugin.GitHubFlavored())

	return &Converter{
		converter: converter,
	}
}

// Convert transforms HTML content to markdown. The readable article is
// extracted first so navigation and boilerplate do not leak into
// profiles; when extraction finds nothing the whole document is
// converted instead. name is used only for extraction context.
func (c *Converter) Convert(name string, htmlContent []byte) (*Result, error) {
	title := ""
	content := ""

	pageURL := &url.URL{Scheme: "file", Path: "/" + filepath.ToSlash(name)}
	article, err := readability.FromReader(bytes.NewReader(htmlContent), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		title = strings.TrimSpace(article.Title)
		content = article.Content
	} else {
		content = basicHTMLCleanup(string(htmlContent))
	}

	markdown, err := c.converter.ConvertString(content)
	if err != nil {
		return nil, fmt.Errorf("convert HTML: %w", err)
	}
	markdown = cleanMarkdown(markdown)

	// Fall back to the <title> element, then to the first markdown H1
	if title == "" {
		title = extractHTMLTitle(htmlContent)
	}
	if title == "" {
		title = extractMarkdownTitle(markdown)
	}

	return &Result{
		Title:    title,
		Markdown: markdown,
	}, nil
}

// MarkdownBody returns the converted document ready for inlining: the
// extracted title becomes a leading H1 heading unless the markdown
// already carries it as its first heading.
func (c *Converter) MarkdownBody(name string, htmlContent []byte) (string, error) {
	result, err := c.Convert(name, htmlContent)
	if err != nil {
		return "", err
	}
	if result.Title != "" && extractMarkdownTitle(result.Markdown) != result.Title {
		return "# " + result.Title + "\n\n" + result.Markdown, nil
	}
	return result.Markdown, nil
}

// extractHTMLTitle extracts the title element from HTML.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return ""
	}

	var title string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			extract(c)
		}
	}
	extract(doc)

	return title
}

// basicHTMLCleanup strips script and style blocks for the fallback path
// where no readable article was extracted.
func basicHTMLCleanup(content string) string {
	content = scriptRe.ReplaceAllString(content, "")
	content = styleRe.ReplaceAllString(content, "")
	return content
}

// cleanMarkdown cleans up converted markdown.
func cleanMarkdown(content string) string {
	// Collapse runs of more than two blank lines
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")

	return strings.TrimSpace(content)
}

// extractMarkdownTitle extracts the first H1 heading from markdown.
func extractMarkdownTitle(content string) string {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
