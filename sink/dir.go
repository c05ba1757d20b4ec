package sink

import (
	"github.com/zarpay/praxis-cli/profile"
)

// Dir is the plain profile-directory sink: one pure profile per alias,
// no metadata block. It is configured by path, not looked up in the
// registry, and is suppressed entirely when the profile directory is
// disabled in config.
type Dir struct {
	path string
}

// NewDir creates a profile-directory sink writing into path.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

func (d *Dir) Name() string {
	return "profile-dir"
}

func (d *Dir) Write(pureText string, _ *profile.AgentMeta, alias string) error {
	return writeFile(d.path, alias, pureText)
}
