package sink

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zarpay/praxis-cli/profile"
)

func init() {
	Register("claude", func(opts Options) Sink {
		dir := opts.OutputDir
		if dir == "" {
			dir = ".claude/agents"
		}
		return &claudeSink{outputDir: dir}
	})
}

// claudeSink writes agent files in the Claude Code format: the profile
// body preceded by a YAML front-matter block carrying the agent
// identity.
type claudeSink struct {
	outputDir string
}

// claudeMeta is the front-matter shape Claude Code expects. Tools are
// a comma-joined string, not a list.
type claudeMeta struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Tools          string `yaml:"tools,omitempty"`
	Model          string `yaml:"model,omitempty"`
	PermissionMode string `yaml:"permissionMode,omitempty"`
}

func (s *claudeSink) Name() string {
	return "claude"
}

func (s *claudeSink) Write(pureText string, meta *profile.AgentMeta, alias string) error {
	content := pureText
	if meta != nil {
		block, err := yaml.Marshal(claudeMeta{
			Name:           meta.Name,
			Description:    meta.Description,
			Tools:          strings.Join(meta.Tools, ", "),
			Model:          meta.Model,
			PermissionMode: meta.PermissionMode,
		})
		if err != nil {
			return fmt.Errorf("marshal claude metadata: %w", err)
		}
		content = "---\n" + string(block) + "---\n\n" + pureText
	}
	return writeFile(s.outputDir, alias, content)
}
