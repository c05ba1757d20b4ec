// Package diag defines the per-document compiler diagnostics. A
// diagnostic marks an authoring problem in one manifest or reference;
// it is collected in order and never aborts a batch.
package diag

// Code identifies the kind of authoring problem.
type Code string

const (
	// CodeFileNotFound marks a literal reference path that does not exist.
	CodeFileNotFound Code = "file_not_found"

	// CodeGlobNoMatch marks a glob pattern that matched zero files.
	CodeGlobNoMatch Code = "glob_no_match"

	// CodeBadPattern marks a glob pattern that fails to parse.
	CodeBadPattern Code = "bad_pattern"

	// CodeNoAlias marks a role manifest without an alias.
	CodeNoAlias Code = "no_alias"

	// CodeNoDescription marks a role manifest without a description.
	CodeNoDescription Code = "no_description"

	// CodeDeprecatedConstitution marks the legacy `constitution: true` form.
	CodeDeprecatedConstitution Code = "deprecated_constitution"

	// CodeBadFrontmatter marks a malformed front-matter block.
	CodeBadFrontmatter Code = "bad_frontmatter"

	// CodeInlineSkipped marks a resolved reference that could not be read
	// or converted at inline time.
	CodeInlineSkipped Code = "inline_skipped"
)

// Diag is one diagnostic. Subject names the pattern, path, or role the
// diagnostic refers to; Message is the human-readable description.
type Diag struct {
	Code    Code
	Subject string
	Message string
}

func (d Diag) String() string {
	if d.Subject == "" {
		return d.Message
	}
	return d.Message + ": " + d.Subject
}
