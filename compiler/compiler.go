// Package compiler orchestrates role compilation: it reads a role
// manifest, expands each declared reference group, inlines the
// resolved document bodies, renders the profile, and dispatches the
// result to the configured sinks. Roles compile strictly sequentially
// so diagnostics stay ordered and one role's filesystem errors never
// interleave with another's output.
package compiler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zarpay/praxis-cli/convert"
	"github.com/zarpay/praxis-cli/diag"
	"github.com/zarpay/praxis-cli/manifest"
	"github.com/zarpay/praxis-cli/profile"
	"github.com/zarpay/praxis-cli/resolve"
	"github.com/zarpay/praxis-cli/sink"
)

// Role directory entries that are never compiled in batch mode.
const (
	templateFile = "_template.md"
	readmeFile   = "README.md"
)

// referenceGroups maps manifest keys to profile sections in the fixed
// processing order. The render order is the profile's own; this order
// only fixes which group's diagnostics come first.
var referenceGroups = []struct {
	Key     string
	Section profile.Section
}{
	{"responsibilities", profile.SectionResponsibilities},
	{"constitution", profile.SectionConstitution},
	{"context", profile.SectionContext},
	{"refs", profile.SectionReference},
}

// Compiler compiles role manifests into profiles.
type Compiler struct {
	root      string
	rolesDir  string
	sinks     []sink.Sink
	converter *convert.Converter
	logger    *slog.Logger

	diags []diag.Diag
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSinks sets the output sinks profiles are dispatched to. No sinks
// means compile-and-discard, which is still useful for validation.
func WithSinks(sinks ...sink.Sink) Option {
	return func(c *Compiler) {
		c.sinks = sinks
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a compiler. Reference patterns resolve against root;
// rolesDir holds the role documents batch mode scans.
func New(root, rolesDir string, opts ...Option) *Compiler {
	c := &Compiler{
		root:      root,
		rolesDir:  rolesDir,
		converter: convert.NewConverter(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Diags returns the diagnostics collected so far, in emission order.
func (c *Compiler) Diags() []diag.Diag {
	return c.diags
}

// report records a diagnostic and logs it. Diagnostics mark authoring
// problems in one document; they never abort a batch.
func (c *Compiler) report(d diag.Diag) {
	c.diags = append(c.diags, d)
	c.logger.Warn(d.Message, "code", d.Code, "subject", d.Subject)
}

// CompileRole compiles one role document. A role without an alias is
// skipped (nil profile, nil error) with a diagnostic; real I/O
// failures return an error so batch mode can log and continue.
func (c *Compiler) CompileRole(path string) (*profile.Profile, error) {
	doc, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if doc.FrontmatterErr != nil {
		c.report(diag.Diag{
			Code:    diag.CodeBadFrontmatter,
			Subject: filepath.Base(path),
			Message: "malformed front-matter ignored",
		})
	}

	alias, _ := doc.Frontmatter.String("alias")
	alias = strings.TrimSpace(alias)
	if alias == "" {
		c.report(diag.Diag{
			Code:    diag.CodeNoAlias,
			Subject: filepath.Base(path),
			Message: "role skipped: no alias",
		})
		return nil, nil
	}

	meta, metaDiag := profile.DeriveMeta(alias, doc.Frontmatter)
	if metaDiag != nil {
		c.report(*metaDiag)
	}

	p := profile.New(alias)
	p.Meta = meta
	p.Add(profile.SectionRole, doc.Body)

	for _, group := range referenceGroups {
		c.collectGroup(p, doc, group.Key, group.Section, alias)
	}

	rendered := p.Render()
	for _, s := range c.sinks {
		if err := s.Write(rendered, meta, alias); err != nil {
			return nil, fmt.Errorf("sink %s: %w", s.Name(), err)
		}
	}

	c.logger.Info("compiled role",
		"alias", alias,
		"slug", profile.Slug(alias),
		"sinks", len(c.sinks))

	return p, nil
}

// collectGroup expands one reference group and inlines the resolved
// bodies into the profile section.
func (c *Compiler) collectGroup(p *profile.Profile, doc *manifest.Document, key string, section profile.Section, alias string) {
	// Legacy boolean constitution declaration: accepted, expands
	// nothing, deprecation diagnostic on true.
	if key == "constitution" {
		if legacy, ok := doc.Frontmatter.Bool(key); ok {
			if legacy {
				c.report(diag.Diag{
					Code:    diag.CodeDeprecatedConstitution,
					Subject: alias,
					Message: "constitution: true is deprecated; use an explicit glob pattern",
				})
			}
			return
		}
	}

	if !doc.Frontmatter.Has(key) {
		return
	}

	patterns := doc.Frontmatter.StringSlice(key)
	paths, diags := resolve.ExpandAll(c.root, patterns)
	for _, d := range diags {
		c.report(d)
	}

	for _, rel := range paths {
		body, err := c.inlineBody(rel)
		if err != nil {
			// The file resolved moments ago; a read failure now is a
			// race with an external writer, reported like not-found.
			c.report(diag.Diag{
				Code:    diag.CodeInlineSkipped,
				Subject: rel,
				Message: "resolved reference could not be inlined",
			})
			continue
		}
		p.Add(section, body)
	}
}

// inlineBody reads a resolved reference for inlining: markdown gets
// its front-matter stripped, HTML is converted to markdown first.
func (c *Compiler) inlineBody(rel string) (string, error) {
	abs := filepath.Join(c.root, filepath.FromSlash(rel))

	switch strings.ToLower(filepath.Ext(rel)) {
	case ".html", ".htm":
		content, err := os.ReadFile(abs)
		if err != nil {
			return "", err
		}
		return c.converter.MarkdownBody(rel, content)
	default:
		return manifest.LoadBody(abs)
	}
}

// CompileAll compiles every role document in the roles directory,
// excluding the template and README. It continues past any single
// role's failure and returns the number of roles compiled.
func (c *Compiler) CompileAll() (int, error) {
	// Each batch starts a fresh diagnostic record so watch-mode
	// recompiles do not accumulate stale diagnostics.
	c.diags = nil

	entries, err := os.ReadDir(c.rolesDir)
	if err != nil {
		return 0, fmt.Errorf("list roles directory: %w", err)
	}

	compiled := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		if name == templateFile || name == readmeFile {
			continue
		}

		p, err := c.CompileRole(filepath.Join(c.rolesDir, name))
		if err != nil {
			c.logger.Error("role compilation failed", "role", name, "error", err)
			continue
		}
		if p != nil {
			compiled++
		}
	}

	return compiled, nil
}
