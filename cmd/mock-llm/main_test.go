package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func completion(t *testing.T, s *server, model string) (chatResponse, int) {
	t.Helper()
	body := strings.NewReader(`{"model":"` + model + `","messages":[{"role":"user","content":"check"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", body)
	w := httptest.NewRecorder()
	s.handleChatCompletions(w, req)

	var resp chatResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Choices, 1)
	}
	return resp, w.Code
}

func verdict(t *testing.T, s *server, model string) string {
	t.Helper()
	resp, code := completion(t, s, model)
	require.Equal(t, http.StatusOK, code)
	return resp.Choices[0].Message.Content
}

func TestLoadFixtures_BaseAndNumbered(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "strict-judge.1.txt", "No.\n- missing title\n")
	writeFixture(t, dir, "strict-judge.2.txt", "maybe, the ordering is unclear\n")
	writeFixture(t, dir, "strict-judge.txt", "yes\n")
	writeFixture(t, dir, "lenient-judge.txt", "yes, looks fine\n")
	writeFixture(t, dir, "notes.md", "not a fixture")

	fixtures, err := loadFixtures(dir)
	require.NoError(t, err)

	require.Len(t, fixtures, 2)
	assert.Equal(t, []string{
		"No.\n- missing title",
		"maybe, the ordering is unclear",
		"yes",
	}, fixtures["strict-judge"])
	assert.Equal(t, []string{"yes, looks fine"}, fixtures["lenient-judge"])
}

func TestLoadFixtures_MissingDir(t *testing.T) {
	_, err := loadFixtures(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestServer_SequentialVerdicts(t *testing.T) {
	s := newServer(map[string][]string{
		"judge": {"No.\n- missing title", "yes"},
	}, "")

	assert.Equal(t, "No.\n- missing title", verdict(t, s, "judge"))
	assert.Equal(t, "yes", verdict(t, s, "judge"))
	// Beyond the sequence the last verdict repeats.
	assert.Equal(t, "yes", verdict(t, s, "judge"))
}

func TestServer_DefaultVerdict(t *testing.T) {
	s := newServer(map[string][]string{}, "yes")

	assert.Equal(t, "yes", verdict(t, s, "any-model"))
}

func TestServer_UnknownModelWithoutDefault(t *testing.T) {
	s := newServer(map[string][]string{"judge": {"yes"}}, "")

	_, code := completion(t, s, "other")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_ResponseEnvelope(t *testing.T) {
	s := newServer(map[string][]string{"judge": {"yes"}}, "")

	resp, code := completion(t, s, "judge")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, "judge", resp.Model)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, "assistant", resp.Choices[0].Message.Role)
	assert.NotEmpty(t, resp.ID)
}

func TestServer_Stats(t *testing.T) {
	s := newServer(map[string][]string{
		"judge": {"yes"},
		"other": {"no"},
	}, "")

	verdict(t, s, "judge")
	verdict(t, s, "judge")
	verdict(t, s, "other")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	s.handleStats(w, req)

	var stats struct {
		TotalCalls   int64            `json:"total_calls"`
		CallsByModel map[string]int64 `json:"calls_by_model"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, int64(3), stats.TotalCalls)
	assert.Equal(t, int64(2), stats.CallsByModel["judge"])
	assert.Equal(t, int64(1), stats.CallsByModel["other"])
}

func TestServer_RejectsGet(t *testing.T) {
	s := newServer(map[string][]string{"judge": {"yes"}}, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil)
	w := httptest.NewRecorder()
	s.handleChatCompletions(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_Healthz(t *testing.T) {
	s := newServer(nil, "yes")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.handleHealthz(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
