// Package sink routes compiled profiles to named output destinations.
// Each platform sink owns wrapping the pure profile text with its own
// metadata block and writing to its own directory; the registry maps
// configured sink names to factories so an unknown name fails at
// startup with the valid set.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/zarpay/praxis-cli/profile"
)

// Sink consumes one compiled profile. meta is nil when the role
// manifest had no description; sinks must emit the body without a
// metadata block in that case, never fail.
type Sink interface {
	// Name returns the sink identifier.
	Name() string

	// Write routes one profile. pureText is the rendered profile with
	// no platform wrapper; alias is the manifest alias verbatim.
	Write(pureText string, meta *profile.AgentMeta, alias string) error
}

// Options configures a sink instance.
type Options struct {
	// OutputDir is the directory the sink writes into.
	OutputDir string
}

// Factory builds a sink from its options.
type Factory func(opts Options) Sink

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register adds a sink factory to the registry.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// New builds the named sink. An unknown name is a configuration error
// listing the known sink names.
func New(name string, opts Options) (Sink, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sink %q (known sinks: %v)", name, Names())
	}
	return f(opts), nil
}

// Names returns all registered sink names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// writeFile writes content to dir/<slug(alias)>.md, creating the
// directory when needed.
func writeFile(dir, alias, content string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, profile.Slug(alias)+".md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
