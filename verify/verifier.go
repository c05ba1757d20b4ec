package verify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zarpay/praxis-cli/llm"
	"github.com/zarpay/praxis-cli/project"
)

// CompletionClient is the slice of the LLM client the verifier needs.
type CompletionClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Verifier checks documents against the specification governing their
// type, consulting the cache before calling the remote model.
type Verifier struct {
	layout *project.Layout
	cache  *Cache
	client CompletionClient
	logger *slog.Logger

	// force bypasses cache reads; writes still happen so the next
	// non-forced check sees the fresh outcome.
	force bool
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithForce makes every check skip the cache read.
func WithForce(force bool) VerifierOption {
	return func(v *Verifier) {
		v.force = force
	}
}

// WithVerifierLogger sets the logger.
func WithVerifierLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a verifier for the given project layout.
func NewVerifier(layout *project.Layout, cache *Cache, client CompletionClient, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		layout: layout,
		cache:  cache,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Check verifies one document. Remote and credential failures are
// returned as errors, never folded into a non-compliant outcome; cache
// problems never surface at all.
func (v *Verifier) Check(ctx context.Context, docPath string) (*Outcome, error) {
	docType, err := v.layout.DocumentType(docPath)
	if err != nil {
		return nil, err
	}

	specPath := v.layout.SpecPath(docType)
	specContent, err := os.ReadFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("read specification for type %q: %w", docType, err)
	}

	docContent, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	fp := Fingerprint(docContent, specContent)

	if !v.force {
		if outcome, ok := v.cache.Read(docPath, fp); ok {
			v.logger.Debug("verification cache hit",
				"path", docPath,
				"fingerprint", fp)
			return outcome, nil
		}
	}

	system, user := buildVerifyMessages(string(specContent), string(docContent))
	resp, err := v.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", docPath, err)
	}

	outcome := ParseReply(resp.Content)
	v.logger.Debug("verification complete",
		"path", docPath,
		"compliant", outcome.Compliant,
		"issues", len(outcome.Issues),
		"request_id", resp.RequestID)

	v.cache.Write(docPath, fp, outcome, DocumentInfo{
		Path:     docPath,
		Type:     docType,
		SpecPath: specPath,
	})

	return &outcome, nil
}
