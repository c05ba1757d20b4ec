package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zarpay/praxis-cli/project"
)

const (
	// UserConfigDir is the directory for user-level config, relative
	// to the home directory.
	UserConfigDir = ".config/praxis"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration for the project at root with layered
// precedence:
//  1. Defaults
//  2. User config (~/.config/praxis/config.yaml)
//  3. Project config (<root>/.praxis/config.yaml)
func (l *Loader) Load(root string) (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("failed to load user config",
				slog.String("path", userConfigPath),
				slog.String("error", err.Error()))
		}
	}

	projectConfigPath := filepath.Join(root, project.RootDir, project.ConfigFile)
	if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
		l.logger.Debug("loaded project config", slog.String("path", projectConfigPath))
		config.Merge(projectConfig)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load project config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// userConfigPath returns the path to the user config file, or empty
// when no home directory is resolvable.
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
