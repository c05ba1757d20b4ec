// Package main provides the praxis binary entry point.
// Praxis compiles role manifests into resolved agent profiles and
// verifies project documents against their governing specifications.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	// Register LLM providers via init()
	_ "github.com/zarpay/praxis-cli/llm/providers"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "praxis"
)

// exitError carries a process exit code through cobra's error return.
// A nil cause means the command already reported the problem on its
// own output and only the code should escape.
type exitError struct {
	code  int
	cause error
}

func (e *exitError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.cause.Error()
}

func (e *exitError) Unwrap() error { return e.cause }

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.cause != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exit.cause)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
