package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zarpay/praxis-cli/config"
	"github.com/zarpay/praxis-cli/llm"
	"github.com/zarpay/praxis-cli/verify"
)

func checkCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Verify documents against their governing specifications",
		Long: `Check classifies each document by the type directory it lives under,
reads the specification for that type, and asks the configured model
whether the document complies. Verdicts are cached by a fingerprint of
document plus specification, so an unchanged pair is answered locally.

Exit status is 1 when any document is non-compliant and 2 when a check
could not be completed at all.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-verify even when a cached verdict exists")

	return cmd
}

func runCheck(opts *rootOptions, paths []string, force bool) error {
	env, err := loadProject(opts)
	if err != nil {
		return err
	}

	client, err := newLLMClient(env.cfg.LLM, env.logger)
	if err != nil {
		return err
	}

	verifier := verify.NewVerifier(env.layout, newCache(env), client,
		verify.WithForce(force),
		verify.WithVerifierLogger(env.logger))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var nonCompliant, failed int
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}

		outcome, err := verifier.Check(ctx, abs)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		printOutcome(path, outcome)
		if !outcome.Compliant {
			nonCompliant++
		}
	}

	switch {
	case failed > 0:
		return &exitError{code: 2}
	case nonCompliant > 0:
		return &exitError{code: 1}
	}
	return nil
}

// printOutcome writes one verdict line, then any issues indented
// below it.
func printOutcome(path string, outcome *verify.Outcome) {
	marker := "✓"
	if !outcome.Compliant {
		marker = "✗"
		if outcome.Severity == verify.SeverityWarning {
			marker = "⚠"
		}
	}

	suffix := ""
	if outcome.Cached {
		suffix = " (cached)"
	}

	fmt.Printf("%s %s%s\n", marker, path, suffix)
	for _, issue := range outcome.Issues {
		fmt.Printf("    - %s\n", issue)
	}
}

// newLLMClient builds the completion client from configuration.
// Credentials come from the environment here, never inside the
// client: ANTHROPIC_API_KEY for the anthropic provider,
// OPENAI_API_KEY for everything else.
func newLLMClient(cfg config.LLMConfig, logger *slog.Logger) (*llm.Client, error) {
	retry := llm.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}

	clientOpts := []llm.ClientOption{
		llm.WithLogger(logger),
		llm.WithRetryConfig(retry),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, llm.WithTimeout(cfg.Timeout))
	}

	return llm.NewClient(llm.Endpoint{
		Provider: cfg.Provider,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		APIKey:   apiKeyFor(cfg.Provider),
	}, clientOpts...)
}

func apiKeyFor(provider string) string {
	if provider == "anthropic" {
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}
