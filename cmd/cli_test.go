package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionWorksWithoutAPIKey(t *testing.T) {
	home := t.TempDir()
	setChatEnv(t, "", "")

	stdout, _, err := executeCLI(t, home, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestChatRequiresAPIKey(t *testing.T) {
	home := t.TempDir()
	setChatEnv(t, "", "")

	_, _, err := executeCLI(t, home, "exit\n", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestChatFailsWhenPrimaryModelIsUnknown(t *testing.T) {
	api := newFakeGemini(t)
	home := t.TempDir()
	setChatEnv(t, "test-key", api.URL())
	t.Setenv("MODEL_ID", "ghost")

	_, _, err := executeCLI(t, home, "hi\n", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start chat session")
	assert.Contains(t, err.Error(), "ghost")
}

func TestChatMigratesOnQuotaAndAnswersFromFallback(t *testing.T) {
	api := newFakeGemini(t)
	api.quota("model-a")
	api.answer("model-b", "hello from B")

	home := t.TempDir()
	setChatEnv(t, "test-key", api.URL())

	stdout, _, err := executeCLI(t, home, "hi\n\nexit\n")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MULTI-MODEL MODE")
	assert.Contains(t, stdout, "Pool: model-a, model-b")
	assert.Contains(t, stdout, "[ALERT] Quota exhausted on model model-a...")
	assert.Contains(t, stdout, "[SYSTEM] Migrating context to backup: model-b")
	assert.Contains(t, stdout, "(model-b)")
	assert.Contains(t, stdout, "hello from B")
	assert.Contains(t, stdout, "Closing...")
	assert.Equal(t, []string{"model-a", "model-b"}, api.generated())

	_, err = os.Stat(filepath.Join(home, ".cascade", "transcripts.toml"))
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "", "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "active model: model-b")
	assert.Contains(t, stdout, "migrated model-a -> model-b")
	assert.Contains(t, stdout, "hello from B")
}

func TestChatReportsExhaustedPoolAndKeepsReading(t *testing.T) {
	api := newFakeGemini(t)
	api.quota("model-a")
	api.quota("model-b")

	home := t.TempDir()
	setChatEnv(t, "test-key", api.URL())

	stdout, _, err := executeCLI(t, home, "hi\nagain\nsair\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[ERROR]: ")
	assert.Contains(t, stdout, "wait a minute")
	assert.Equal(t, []string{"model-a", "model-b", "model-a", "model-b"}, api.generated())
	assert.Contains(t, stdout, "Closing...")
}

func TestChatStopsAtEndOfInput(t *testing.T) {
	api := newFakeGemini(t)
	home := t.TempDir()
	setChatEnv(t, "test-key", api.URL())

	stdout, _, err := executeCLI(t, home, "", "chat")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Closing...")
	assert.Empty(t, api.generated())
}

func TestChatResumeSeedsSavedHistory(t *testing.T) {
	api := newFakeGemini(t)
	api.answer("model-a", "first")
	api.answer("model-a", "second")

	home := t.TempDir()
	setChatEnv(t, "test-key", api.URL())

	_, _, err := executeCLI(t, home, "remember me\nquit\n", "chat")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "and now?\nquit\n", "chat", "--resume")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Resumed 2 turns")
	assert.Contains(t, stdout, "on model-a")

	last := api.lastRequest()
	require.Len(t, last.Contents, 3)
	assert.Equal(t, "remember me", last.Contents[0].Parts[0].Text)
	assert.Equal(t, "first", last.Contents[1].Parts[0].Text)
	assert.Equal(t, "and now?", last.Contents[2].Parts[0].Text)
}

func TestKeySetLetsChatRunWithoutEnvironmentKey(t *testing.T) {
	api := newFakeGemini(t)
	api.answer("model-a", "hi there")

	home := t.TempDir()
	setChatEnv(t, "", api.URL())

	stdout, _, err := executeCLI(t, home, "", "key", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No API key stored.")

	stdout, _, err = executeCLI(t, home, "AIzaStoredKey1234\n", "key", "set")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API key stored.")

	info, err := os.Stat(filepath.Join(home, ".cascade", "secrets", "gemini", "api_key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	stdout, _, err = executeCLI(t, home, "", "key", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "AIza*********1234")

	stdout, _, err = executeCLI(t, home, "hello\nexit\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, stdout, "hi there")
	assert.Equal(t, "AIzaStoredKey1234", api.lastKey())

	_, _, err = executeCLI(t, home, "", "key", "delete")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "", "chat")
	require.ErrorContains(t, err, "GOOGLE_API_KEY")
}

func TestKeySetRejectsEmptyValue(t *testing.T) {
	home := t.TempDir()
	setChatEnv(t, "", "")

	_, _, err := executeCLI(t, home, "\n", "key", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is missing")
}

func TestHistoryWithoutTranscript(t *testing.T) {
	home := t.TempDir()
	setChatEnv(t, "test-key", "http://127.0.0.1:1/v1beta/")

	stdout, _, err := executeCLI(t, home, "", "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No saved conversation.")
}

func TestModelsMarksPoolMembers(t *testing.T) {
	api := newFakeGemini(t)
	home := t.TempDir()
	setChatEnv(t, "test-key", api.URL())

	stdout, _, err := executeCLI(t, home, "", "models")
	require.NoError(t, err)
	assert.Contains(t, stdout, "models: 3")
	assert.Contains(t, stdout, "* ID: model-a")
	assert.Contains(t, stdout, "  ID: model-c")
}

func TestModelsJSONOutput(t *testing.T) {
	api := newFakeGemini(t)
	home := t.TempDir()
	setChatEnv(t, "test-key", api.URL())

	stdout, _, err := executeCLI(t, home, "", "models", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"ID\": \"model-b\"")
}

func executeCLI(t *testing.T, home string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env-file", filepath.Join(home, "missing.env")))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func setChatEnv(t *testing.T, apiKey string, baseURL string) {
	t.Helper()

	for _, name := range []string{
		"AGENT_NAME", "USER_NAME", "USER_ROLE", "USER_DETAILS", "SYSTEM_PROMPT_TEMPLATE",
		"TEMPERATURE", "CASCADE_REQUEST_TIMEOUT", "CASCADE_TRANSCRIPT_PATH", "LOG_LEVEL",
		"REQUEST_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("GOOGLE_API_KEY", apiKey)
	t.Setenv("GEMINI_BASE_URL", baseURL)
	t.Setenv("MODEL_ID", "model-a")
	t.Setenv("FALLBACK_MODELS", "model-b")
	t.Setenv("CASCADE_LOG_LEVEL", "error")
	t.Setenv("CASCADE_SECRET_BACKEND", "file")
}

type fakeRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

// fakeGemini serves the REST endpoints the client uses. Each model answers
// from its own queue; an empty queue answers with a quota error.
type fakeGemini struct {
	server *httptest.Server

	mu       sync.Mutex
	replies  map[string][]string
	calls    []string
	requests []fakeRequest
	key      string
}

func newFakeGemini(t *testing.T) *fakeGemini {
	t.Helper()

	f := &fakeGemini{replies: map[string][]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeGemini) URL() string {
	return f.server.URL + "/v1beta/"
}

func (f *fakeGemini) quota(model string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.replies[model]; !ok {
		f.replies[model] = nil
	}
}

func (f *fakeGemini) answer(model string, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[model] = append(f.replies[model], text)
}

func (f *fakeGemini) generated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGemini) lastRequest() fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return fakeRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeGemini) lastKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

func (f *fakeGemini) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1beta/")

	f.mu.Lock()
	f.key = r.Header.Get("x-goog-api-key")
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && path == "models":
		_, _ = fmt.Fprint(w, `{"models":[`+
			`{"name":"models/model-a","displayName":"Model A","supportedGenerationMethods":["generateContent"]},`+
			`{"name":"models/model-b","displayName":"Model B","supportedGenerationMethods":["generateContent"]},`+
			`{"name":"models/model-c","displayName":"Model C","supportedGenerationMethods":["embedContent"]}]}`)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "models/"):
		model := strings.TrimPrefix(path, "models/")
		if model == "ghost" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(w, `{"error":{"code":404,"message":"models/ghost is not found","status":"NOT_FOUND"}}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"name":"models/%s"}`, model)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":generateContent"):
		model := strings.TrimSuffix(strings.TrimPrefix(path, "models/"), ":generateContent")

		var req fakeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.calls = append(f.calls, model)
		f.requests = append(f.requests, req)
		queue := f.replies[model]
		var text string
		ok := len(queue) > 0
		if ok {
			text = queue[0]
			f.replies[model] = queue[1:]
		}
		f.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = fmt.Fprint(w, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
			return
		}

		payload, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			}},
		})
		_, _ = w.Write(payload)
	default:
		http.NotFound(w, r)
	}
}
