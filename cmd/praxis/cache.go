package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zarpay/praxis-cli/verify"
)

func cacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the verification cache",
	}

	cmd.AddCommand(cacheStatsCmd(opts), cacheOrphansCmd(opts))
	return cmd
}

// newCache opens the project's verification cache. PRAXIS_DEBUG=1
// makes the cache's recovered failures visible.
func newCache(env *projectEnv) *verify.Cache {
	logger := env.logger
	if os.Getenv("PRAXIS_DEBUG") == "1" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return verify.NewCache(
		resolvePath(env.root, env.cfg.Project.CacheDir),
		env.layout.ContentRoot(),
		logger,
	)
}

func cacheStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the cached verification verdicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadProject(opts)
			if err != nil {
				return err
			}

			stats, err := newCache(env).Stats()
			if err != nil {
				return err
			}

			fmt.Printf("Entries: %d\n", stats.Files)
			fmt.Printf("Size:    %s\n", formatBytes(stats.TotalBytes))
			if len(stats.ByType) > 0 {
				fmt.Println("By type:")
				types := make([]string, 0, len(stats.ByType))
				for t := range stats.ByType {
					types = append(types, t)
				}
				sort.Strings(types)
				for _, t := range types {
					fmt.Printf("  %-18s %d\n", t, stats.ByType[t])
				}
			}
			return nil
		},
	}
}

func cacheOrphansCmd(opts *rootOptions) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List cache entries whose source document is gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadProject(opts)
			if err != nil {
				return err
			}

			orphans, err := newCache(env).Orphans()
			if err != nil {
				return err
			}

			if len(orphans) == 0 {
				fmt.Println("No orphaned cache entries.")
				return nil
			}

			removed := 0
			for _, o := range orphans {
				rel := relTo(env.root, o.CachePath)
				if !prune {
					fmt.Printf("%s (%s)\n", rel, o.Reason)
					continue
				}
				if err := os.Remove(o.CachePath); err != nil {
					env.logger.Warn("prune failed", "path", o.CachePath, "error", err)
					continue
				}
				removed++
				fmt.Printf("removed %s\n", rel)
			}

			if prune {
				fmt.Printf("Pruned %d of %d orphaned entries\n", removed, len(orphans))
			} else {
				fmt.Printf("%d orphaned entries; run with --prune to delete them\n", len(orphans))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Delete the orphaned entries instead of listing them")

	return cmd
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
