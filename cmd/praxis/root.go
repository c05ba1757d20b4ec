package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zarpay/praxis-cli/config"
	"github.com/zarpay/praxis-cli/project"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	root     string
	logLevel string
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "praxis",
		Short: "Role manifest compiler and document verifier",
		Long: `Praxis compiles declarative role manifests (markdown documents with
YAML front-matter) into fully resolved agent profiles, inlining the
responsibilities, constitution, context, and reference documents each
manifest declares, and routes the result to the configured sinks.

It also verifies project documents against the specification governing
their type, caching verdicts so an unchanged document is never
re-checked against an unchanged specification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "Project root (default: nearest ancestor with a .praxis directory)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		compileCmd(opts),
		checkCmd(opts),
		cacheCmd(opts),
		initCmd(),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// projectEnv bundles what a project-bound command needs: the resolved
// root, the layered configuration, the content layout, and a logger
// honoring the configured level plus any --log-level override.
type projectEnv struct {
	root   string
	cfg    *config.Config
	layout *project.Layout
	logger *slog.Logger
}

// loadProject resolves the project root, loads the layered
// configuration, and installs the configured logger as the default.
func loadProject(opts *rootOptions) (*projectEnv, error) {
	root, err := resolveRoot(opts.root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewLoader(slog.Default()).Load(root)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Log, opts.logLevel)
	slog.SetDefault(logger)

	return &projectEnv{
		root:   root,
		cfg:    cfg,
		layout: project.NewLayout(root, cfg.Project.ContentRoot),
		logger: logger,
	}, nil
}

// resolveRoot honors an explicit --root, otherwise walks up from the
// working directory to the project marker.
func resolveRoot(flag string) (string, error) {
	if flag != "" {
		abs, err := filepath.Abs(flag)
		if err != nil {
			return "", fmt.Errorf("resolve project root: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return project.FindRoot(cwd)
}

// setupLogger builds the process logger. The flag override wins over
// the configured level.
func setupLogger(cfg config.LogConfig, override string) *slog.Logger {
	name := cfg.Level
	if override != "" {
		name = override
	}

	level := slog.LevelInfo
	switch strings.ToLower(name) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler)
}

// resolvePath resolves a configured path against the project root.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// relTo renders path relative to base when it sits underneath it.
func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
