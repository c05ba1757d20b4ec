package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zarpay/praxis-cli/scaffold"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a praxis project",
		Long: `Init creates the .praxis directory with a default configuration and
per-type specification templates, plus the roles and content-type
directories. Existing files are left untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir)
		},
	}
}

func runInit(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve target directory: %w", err)
	}

	result, err := scaffold.Init(abs, slog.Default())
	if err != nil {
		return err
	}

	for _, path := range result.Created {
		fmt.Printf("created %s\n", relTo(abs, path))
	}
	for _, path := range result.Skipped {
		fmt.Printf("skipped %s (exists)\n", relTo(abs, path))
	}

	fmt.Printf("praxis project ready at %s\n", abs)
	return nil
}
