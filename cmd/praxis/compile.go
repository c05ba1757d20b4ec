package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zarpay/praxis-cli/compiler"
	"github.com/zarpay/praxis-cli/config"
	"github.com/zarpay/praxis-cli/sink"
)

func compileCmd(opts *rootOptions) *cobra.Command {
	var (
		watch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "compile [role...]",
		Short: "Compile role manifests into agent profiles",
		Long: `Compile resolves every reference group a role manifest declares,
assembles the profile sections in canonical order, and writes the
result to the configured sinks. With no arguments every role in the
roles directory is compiled; otherwise only the named roles are.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, watch, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Recompile whenever project files change")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address in watch mode (e.g. :9090)")

	return cmd
}

func runCompile(opts *rootOptions, args []string, watch bool, metricsAddr string) error {
	env, err := loadProject(opts)
	if err != nil {
		return err
	}

	sinks, err := buildSinks(env.cfg, env.root)
	if err != nil {
		return err
	}

	rolesDir := resolvePath(env.root, env.cfg.Project.RolesDir)
	comp := compiler.New(env.layout.ContentRoot(), rolesDir,
		compiler.WithSinks(sinks...),
		compiler.WithLogger(env.logger))

	if watch {
		if len(args) > 0 {
			return errors.New("--watch always compiles every role; drop the role arguments")
		}
		return runWatch(env, comp, metricsAddr)
	}

	var compiled int
	if len(args) == 0 {
		compiled, err = comp.CompileAll()
		if err != nil {
			return err
		}
	} else {
		for _, name := range args {
			path, err := rolePath(rolesDir, name)
			if err != nil {
				return err
			}
			p, err := comp.CompileRole(path)
			if err != nil {
				return fmt.Errorf("compile %s: %w", name, err)
			}
			if p != nil {
				compiled++
			}
		}
	}

	if warnings := len(comp.Diags()); warnings > 0 {
		fmt.Printf("Compiled %d role(s), %d warning(s)\n", compiled, warnings)
	} else {
		fmt.Printf("Compiled %d role(s)\n", compiled)
	}
	return nil
}

// rolePath maps a role name argument onto its manifest file. A bare
// name resolves inside the roles directory; an existing markdown path
// is taken verbatim.
func rolePath(rolesDir, name string) (string, error) {
	if strings.HasSuffix(name, ".md") {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	path := filepath.Join(rolesDir, name)
	if !strings.HasSuffix(path, ".md") {
		path += ".md"
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("role %q not found at %s", name, path)
	}
	return path, nil
}

// runWatch compiles once, then recompiles on filesystem changes until
// interrupted. The metrics endpoint is served only when an address was
// given.
func runWatch(env *projectEnv, comp *compiler.Compiler, metricsAddr string) error {
	watchOpts := []compiler.WatchOption{
		compiler.WithWatchLogger(env.logger),
		compiler.WithExcludeDirs(outputDirNames(env.cfg)...),
	}

	if metricsAddr != "" {
		metrics := compiler.NewMetrics()
		watchOpts = append(watchOpts, compiler.WithMetrics(metrics))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				env.logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
			}
		}()
		defer server.Close()
		env.logger.Info("serving metrics", "addr", metricsAddr)
	}

	w, err := compiler.NewWatcher(comp, env.layout.ContentRoot(), watchOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return w.Run(ctx)
}

// buildSinks assembles the sink list from configuration: the profile
// directory unless disabled, then each configured platform sink.
func buildSinks(cfg *config.Config, root string) ([]sink.Sink, error) {
	var sinks []sink.Sink

	if pd := cfg.Project.ProfileDir; !pd.Disabled && pd.Path != "" {
		sinks = append(sinks, sink.NewDir(resolvePath(root, pd.Path)))
	}

	for _, name := range cfg.Sinks {
		sinkOpts := cfg.SinkOptions[name]
		if sinkOpts.OutputDir == "" {
			return nil, fmt.Errorf("sink %q has no output_dir configured", name)
		}
		s, err := sink.New(name, sink.Options{OutputDir: resolvePath(root, sinkOpts.OutputDir)})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}

	return sinks, nil
}

// outputDirNames lists the first path segment of every configured
// output directory so the watcher does not recompile on the
// compiler's own writes.
func outputDirNames(cfg *config.Config) []string {
	var names []string
	add := func(path string) {
		if path == "" || filepath.IsAbs(path) {
			return
		}
		seg := strings.SplitN(filepath.ToSlash(path), "/", 2)[0]
		if seg != "" && seg != "." {
			names = append(names, seg)
		}
	}

	if !cfg.Project.ProfileDir.Disabled {
		add(cfg.Project.ProfileDir.Path)
	}
	for _, name := range cfg.Sinks {
		add(cfg.SinkOptions[name].OutputDir)
	}
	return names
}
