package scaffold

import (
	"fmt"

	"github.com/zarpay/praxis-cli/project"
)

// roleTemplate is the starter role manifest. The underscore prefix
// keeps it out of batch compilation.
func roleTemplate() string {
	return `---
alias: my-role
description: One sentence describing when to hand work to this role.
# model: sonnet
# permission_mode: plan
# tools:
#   - Read
#   - Grep
responsibilities:
  - responsibilities/my-role.md
constitution:
  - constitution/**/*.md
context:
  - context/**/*.md
refs: []
---

Describe the role here. This body becomes the profile's Role section.
`
}

// rolesReadme documents the roles directory for project newcomers.
func rolesReadme() string {
	return `# Roles

Each markdown file here is a role manifest: YAML front-matter declaring
an alias, a description, and reference patterns, followed by the role
body.

Compile them with:

    praxis compile            # every role
    praxis compile my-role    # one role by alias

Files named README.md or prefixed with an underscore are never
compiled. Copy _template.md to start a new role.
`
}

// specTemplates holds the per-type verification specification bodies.
// Each governs documents under the matching content directory and is
// the second input to the validation fingerprint: editing one
// invalidates cached results for its whole type.
var specTemplates = map[string]string{
	project.TypeRoles: `A role document must:

- Declare an alias and a one-sentence description in front-matter.
- Describe a single clear responsibility in its body.
- Reference only documents that help an agent perform this role.
`,
	project.TypeConstitution: `A constitution document must:

- State non-negotiable rules, one per section.
- Use MUST/NEVER phrasing; no suggestions.
- Avoid project-specific file paths that rot.
`,
	project.TypeContext: `A context document must:

- Describe the system as it is today, not as planned.
- Name concrete technologies, services, and boundaries.
- Stay under two pages; split larger topics.
`,
	project.TypeResponsibilities: `A responsibilities document must:

- List duties as imperative bullet points.
- Scope each duty to something one agent can own.
- Avoid overlap with other roles' responsibilities.
`,
	project.TypeRefs: `A reference document must:

- Cover one topic per file.
- Be accurate: stale references are worse than none.
- Prefer examples over prose where possible.
`,
}

// specTemplate returns the starter verification specification for a
// document type.
func specTemplate(docType string) string {
	header := fmt.Sprintf("# %s specification\n\npraxis check verifies %s documents against this file.\n\n",
		docType, docType)
	body, ok := specTemplates[docType]
	if !ok {
		body = "Describe what a valid document of this type looks like.\n"
	}
	return header + body
}
