package profile

import (
	"regexp"
	"strings"

	"github.com/zarpay/praxis-cli/diag"
	"github.com/zarpay/praxis-cli/manifest"
)

// AgentMeta is the platform-facing identity derived from a role
// manifest. Sinks that wrap profiles with a metadata block read it;
// the pure profile rendering never does.
type AgentMeta struct {
	Name           string
	Description    string
	Tools          []string
	Model          string
	PermissionMode string
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes an alias into the token used for file names and the
// metadata name field: lowercased, runs outside [a-z0-9] collapsed to
// one hyphen, no leading or trailing hyphen.
func Slug(alias string) string {
	s := strings.ToLower(alias)
	s = nonAlnumRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DeriveMeta builds agent metadata from a role manifest. A missing or
// empty description yields nil metadata plus a diagnostic; the role
// still compiles and platform sinks simply omit their metadata block.
func DeriveMeta(alias string, fm manifest.Frontmatter) (*AgentMeta, *diag.Diag) {
	description, _ := fm.String("description")
	if strings.TrimSpace(description) == "" {
		return nil, &diag.Diag{
			Code:    diag.CodeNoDescription,
			Subject: alias,
			Message: "role has no description; platform metadata suppressed",
		}
	}

	model, _ := fm.String("model")
	permissionMode, _ := fm.String("permission_mode")

	return &AgentMeta{
		Name:           Slug(alias),
		Description:    strings.TrimSpace(description),
		Tools:          fm.StringSlice("tools"),
		Model:          model,
		PermissionMode: permissionMode,
	}, nil
}
