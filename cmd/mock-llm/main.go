// Package main implements a mock completion server for exercising the
// praxis verification workflow without credentials. It answers
// OpenAI-compatible /v1/chat/completions requests with plain-text
// verdict fixtures, routed by the "model" field of the request.
//
// Usage:
//
//	mock-llm -fixtures ./fixtures -port 11434 -default yes
//
// Fixtures are text files named by model ("strict-judge.txt" answers
// model "strict-judge"). Numbered files ("strict-judge.1.txt",
// "strict-judge.2.txt") are served in order, one per call, before the
// base file repeats forever; that exercises re-check flows where the
// first verdict fails and a forced second one passes. A model with no
// fixture gets the -default verdict, so against a bare server
//
//	praxis check roles/reviewer.md
//
// reports every document compliant.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// --- OpenAI-compatible wire types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// server answers completion requests from verdict fixtures.
type server struct {
	fixtures       map[string][]string // model → ordered verdict sequence
	defaultVerdict string
	calls          atomic.Int64

	// Per-model call counters drive sequential fixture selection.
	modelCalls   map[string]*atomic.Int64
	modelCallsMu sync.Mutex
}

func newServer(fixtures map[string][]string, defaultVerdict string) *server {
	return &server{
		fixtures:       fixtures,
		defaultVerdict: defaultVerdict,
		modelCalls:     make(map[string]*atomic.Int64),
	}
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory containing verdict fixture files (*.txt, named by model)")
	port := flag.Int("port", 11434, "port to listen on")
	defaultVerdict := flag.String("default", "yes", "verdict served for models with no fixture (empty disables the fallback)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	fixtures := map[string][]string{}
	if *fixtureDir != "" {
		var err error
		fixtures, err = loadFixtures(*fixtureDir)
		if err != nil {
			logger.Error("load fixtures", "dir", *fixtureDir, "error", err)
			os.Exit(1)
		}
	}
	if len(fixtures) == 0 && *defaultVerdict == "" {
		logger.Error("no fixtures and no default verdict; nothing to serve")
		os.Exit(1)
	}

	for model, seq := range fixtures {
		logger.Info("fixture loaded", "model", model, "responses", len(seq))
	}

	s := newServer(fixtures, *defaultVerdict)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("mock completion server listening", "addr", addr, "default_verdict", *defaultVerdict)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)

	verdict, ok := s.verdictFor(req.Model)
	if !ok {
		slog.Warn("no fixture for model", "call", callNum, "model", req.Model)
		http.Error(w, fmt.Sprintf("no fixture for model %q", req.Model), http.StatusNotFound)
		return
	}

	slog.Info("serving verdict", "call", callNum, "model", req.Model, "messages", len(req.Messages))

	resp := chatResponse{
		ID:      fmt.Sprintf("verdict-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMessage{Role: "assistant", Content: verdict},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(verdict) / 4,
			CompletionTokens: len(verdict) / 4,
			TotalTokens:      len(verdict) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// verdictFor picks the next verdict for a model: the Nth numbered
// fixture on the Nth call, the base fixture once the sequence is
// exhausted, or the default verdict when the model has no fixture.
func (s *server) verdictFor(model string) (string, bool) {
	seq, ok := s.fixtures[model]
	if !ok {
		if s.defaultVerdict == "" {
			return "", false
		}
		s.getModelCounter(model).Add(1)
		return s.defaultVerdict, true
	}

	idx := int(s.getModelCounter(model).Add(1) - 1)
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx], true
}

// getModelCounter returns the call counter for a model, creating it
// lazily.
func (s *server) getModelCounter(model string) *atomic.Int64 {
	s.modelCallsMu.Lock()
	defer s.modelCallsMu.Unlock()
	if c, ok := s.modelCalls[model]; ok {
		return c
	}
	c := &atomic.Int64{}
	s.modelCalls[model] = c
	return c
}

// handleStats returns call counts for test assertions.
func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.modelCallsMu.Lock()
	byModel := make(map[string]int64, len(s.modelCalls))
	for model, counter := range s.modelCalls {
		byModel[model] = counter.Load()
	}
	s.modelCallsMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_calls":    s.calls.Load(),
		"calls_by_model": byModel,
	})
}

// numberedFixtureRe matches "strict-judge.1.txt" style sequential
// fixtures.
var numberedFixtureRe = regexp.MustCompile(`^(.+)\.(\d+)\.txt$`)

// loadFixtures reads *.txt verdict files from dir. Numbered files sort
// first in numeric order; the base "<model>.txt" file is appended as
// the repeating tail of the sequence.
func loadFixtures(dir string) (map[string][]string, error) {
	base := make(map[string]string)
	numbered := make(map[string]map[int]string)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixture directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		content := strings.TrimRight(string(data), "\n")

		if m := numberedFixtureRe.FindStringSubmatch(entry.Name()); m != nil {
			idx, _ := strconv.Atoi(m[2])
			if numbered[m[1]] == nil {
				numbered[m[1]] = make(map[int]string)
			}
			numbered[m[1]][idx] = content
			continue
		}

		base[strings.TrimSuffix(entry.Name(), ".txt")] = content
	}

	fixtures := make(map[string][]string)
	for model, byIndex := range numbered {
		indices := make([]int, 0, len(byIndex))
		for idx := range byIndex {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			fixtures[model] = append(fixtures[model], byIndex[idx])
		}
	}
	for model, content := range base {
		fixtures[model] = append(fixtures[model], content)
	}

	return fixtures, nil
}
