// Package profile assembles compiled role profiles: inlined document
// bodies grouped into canonically ordered sections, plus the agent
// metadata derived from the role manifest.
package profile

import (
	"strings"
)

// Section names a profile section.
type Section string

// Profile sections in their canonical render order.
const (
	SectionRole             Section = "Role"
	SectionResponsibilities Section = "Responsibilities"
	SectionConstitution     Section = "Constitution"
	SectionContext          Section = "Context"
	SectionReference        Section = "Reference"
)

// sectionOrder fixes rendering order regardless of the order bodies
// were collected in.
var sectionOrder = []Section{
	SectionRole,
	SectionResponsibilities,
	SectionConstitution,
	SectionContext,
	SectionReference,
}

// Profile accumulates inlined bodies per section for one role.
type Profile struct {
	// Alias is the role's manifest alias, verbatim.
	Alias string

	// Meta is the derived agent metadata; nil when the manifest has no
	// description.
	Meta *AgentMeta

	sections map[Section][]string
}

// New creates an empty profile for the given alias.
func New(alias string) *Profile {
	return &Profile{
		Alias:    alias,
		sections: make(map[Section][]string),
	}
}

// Add appends an inlined body to a section. Whitespace-only bodies are
// dropped so they cannot render as stray blank blocks.
func (p *Profile) Add(section Section, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	p.sections[section] = append(p.sections[section], body)
}

// Bodies returns the collected bodies for a section in insert order.
func (p *Profile) Bodies(section Section) []string {
	return p.sections[section]
}

// Render produces the pure profile text: each non-empty section as a
// `# <SectionName>` heading followed by its bodies, blank-line
// separated, no outer wrapper. Sections with zero bodies are omitted
// entirely.
func (p *Profile) Render() string {
	var sb strings.Builder

	for _, section := range sectionOrder {
		bodies := p.sections[section]
		if len(bodies) == 0 {
			continue
		}

		sb.WriteString("# ")
		sb.WriteString(string(section))
		sb.WriteString("\n\n")

		for _, body := range bodies {
			sb.WriteString(body)
			sb.WriteString("\n\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}
