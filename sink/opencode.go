package sink

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zarpay/praxis-cli/profile"
)

func init() {
	Register("opencode", func(opts Options) Sink {
		dir := opts.OutputDir
		if dir == "" {
			dir = ".opencode/agent"
		}
		return &opencodeSink{outputDir: dir}
	})
}

// opencodeSink writes agent files in the opencode format: subagent
// mode, tools as a name-to-enabled map.
type opencodeSink struct {
	outputDir string
}

type opencodeMeta struct {
	Description string          `yaml:"description"`
	Mode        string          `yaml:"mode"`
	Model       string          `yaml:"model,omitempty"`
	Tools       map[string]bool `yaml:"tools,omitempty"`
}

func (s *opencodeSink) Name() string {
	return "opencode"
}

func (s *opencodeSink) Write(pureText string, meta *profile.AgentMeta, alias string) error {
	content := pureText
	if meta != nil {
		var tools map[string]bool
		if len(meta.Tools) > 0 {
			tools = make(map[string]bool, len(meta.Tools))
			for _, tool := range meta.Tools {
				tools[tool] = true
			}
		}
		block, err := yaml.Marshal(opencodeMeta{
			Description: meta.Description,
			Mode:        "subagent",
			Model:       meta.Model,
			Tools:       tools,
		})
		if err != nil {
			return fmt.Errorf("marshal opencode metadata: %w", err)
		}
		content = "---\n" + string(block) + "---\n\n" + pureText
	}
	return writeFile(s.outputDir, alias, content)
}
