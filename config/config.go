// Package config provides configuration loading and management for
// praxis: defaults, YAML files at user and project level, validation,
// and merge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zarpay/praxis-cli/sink"
)

// Config is the complete praxis configuration.
type Config struct {
	Version     string                 `yaml:"version"`
	Project     ProjectConfig          `yaml:"project"`
	Sinks       []string               `yaml:"sinks"`
	SinkOptions map[string]SinkOptions `yaml:"sink_options"`
	LLM         LLMConfig              `yaml:"llm"`
	Log         LogConfig              `yaml:"log"`
}

// ProjectConfig locates the project's directories. Relative paths are
// resolved against the project root.
type ProjectConfig struct {
	// RolesDir holds the role manifests batch compilation scans.
	RolesDir string `yaml:"roles_dir"`
	// ContentRoot is the directory whose first-level subdirectories
	// are the document types.
	ContentRoot string `yaml:"content_root"`
	// SpecsDir holds the per-type verification specifications.
	SpecsDir string `yaml:"specs_dir"`
	// CacheDir is the verification cache root.
	CacheDir string `yaml:"cache_dir"`
	// ProfileDir is where pure profiles are written; `profile_dir:
	// false` disables that sink entirely.
	ProfileDir ProfileDir `yaml:"profile_dir"`
}

// ProfileDir is a directory path that authors may disable with a YAML
// `false`. An explicit string is a path; the zero value falls back to
// the default path.
type ProfileDir struct {
	Disabled bool
	Path     string
}

// UnmarshalYAML accepts either a boolean false (disable) or a string
// path. A boolean true keeps the default path.
func (p *ProfileDir) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if err := value.Decode(&b); err == nil {
		p.Disabled = !b
		p.Path = ""
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("profile_dir must be a path or false: %w", err)
	}
	p.Disabled = false
	p.Path = s
	return nil
}

// MarshalYAML renders the disabled state back as false.
func (p ProfileDir) MarshalYAML() (any, error) {
	if p.Disabled {
		return false, nil
	}
	return p.Path, nil
}

// SinkOptions configures one platform sink.
type SinkOptions struct {
	// OutputDir is the directory the sink writes agent files into.
	OutputDir string `yaml:"output_dir"`
}

// LLMConfig configures the verification model endpoint.
type LLMConfig struct {
	// Provider names the registered provider adapter.
	Provider string `yaml:"provider"`
	// Model is the model identifier sent to the endpoint.
	Model string `yaml:"model"`
	// BaseURL overrides the provider's default host; used for
	// OpenAI-compatible endpoints such as the bundled mock server.
	BaseURL string `yaml:"base_url"`
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`
	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int `yaml:"max_retries"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Project: ProjectConfig{
			RolesDir:    "roles",
			ContentRoot: ".",
			SpecsDir:    ".praxis/specs",
			CacheDir:    ".praxis/cache",
			ProfileDir:  ProfileDir{Path: "profiles"},
		},
		Sinks: []string{"claude"},
		SinkOptions: map[string]SinkOptions{
			"claude":   {OutputDir: ".claude/agents"},
			"opencode": {OutputDir: ".opencode/agent"},
		},
		LLM: LLMConfig{
			Provider:   "anthropic",
			Model:      "claude-sonnet-4-5",
			Timeout:    120 * time.Second,
			MaxRetries: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// validLogLevels and validLogFormats enumerate accepted log settings.
var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// Validate checks that the configuration is usable. Unknown sink names
// are configuration errors that must abort before any output is
// written.
func (c *Config) Validate() error {
	known := sink.Names()
	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}
	for _, name := range c.Sinks {
		if !knownSet[name] {
			return fmt.Errorf("unknown sink %q (known sinks: %v)", name, known)
		}
	}

	if c.Project.RolesDir == "" {
		return fmt.Errorf("project.roles_dir is required")
	}
	if !c.Project.ProfileDir.Disabled && c.Project.ProfileDir.Path == "" {
		return fmt.Errorf("project.profile_dir must be a path or false")
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if c.LLM.MaxRetries <= 0 {
		return fmt.Errorf("llm.max_retries must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be text or json")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file. Only declared
// keys are set, so the result layers cleanly over defaults or another
// file via Merge.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one; other takes precedence
// for non-zero values. ProfileDir merges when other declares either a
// path or the disabled state.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Version != "" {
		c.Version = other.Version
	}

	if other.Project.RolesDir != "" {
		c.Project.RolesDir = other.Project.RolesDir
	}
	if other.Project.ContentRoot != "" {
		c.Project.ContentRoot = other.Project.ContentRoot
	}
	if other.Project.SpecsDir != "" {
		c.Project.SpecsDir = other.Project.SpecsDir
	}
	if other.Project.CacheDir != "" {
		c.Project.CacheDir = other.Project.CacheDir
	}
	if other.Project.ProfileDir.Disabled || other.Project.ProfileDir.Path != "" {
		c.Project.ProfileDir = other.Project.ProfileDir
	}

	// A declared empty list means "no platform sinks"; only an absent
	// key keeps the base value.
	if other.Sinks != nil {
		c.Sinks = other.Sinks
	}
	for name, opts := range other.SinkOptions {
		if c.SinkOptions == nil {
			c.SinkOptions = make(map[string]SinkOptions)
		}
		if opts.OutputDir != "" {
			c.SinkOptions[name] = opts
		}
	}

	if other.LLM.Provider != "" {
		c.LLM.Provider = other.LLM.Provider
	}
	if other.LLM.Model != "" {
		c.LLM.Model = other.LLM.Model
	}
	if other.LLM.BaseURL != "" {
		c.LLM.BaseURL = other.LLM.BaseURL
	}
	if other.LLM.Timeout != 0 {
		c.LLM.Timeout = other.LLM.Timeout
	}
	if other.LLM.MaxRetries != 0 {
		c.LLM.MaxRetries = other.LLM.MaxRetries
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
}
