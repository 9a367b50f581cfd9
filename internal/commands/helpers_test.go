package commands

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/diogo/helper/internal/api"
	"github.com/diogo/helper/internal/config"
	"github.com/diogo/helper/internal/history"
	"github.com/diogo/helper/internal/models"
)

// testEnv is a Dependencies set wired to in-memory buffers and a mock completer
type testEnv struct {
	deps      *Dependencies
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	env       map[string]string
	mock      *api.MockClient
	clipboard []string
	dir       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(config.EnvConfigDir, dir)

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		env:    map[string]string{config.EnvAPIKey: "sk-test-key-1234"},
		mock:   api.NewMockClient("Hi there"),
		dir:    dir,
	}
	te.deps = &Dependencies{
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(key string) string { return te.env[key] },
		NewCompleter: func(config.Settings, *zap.Logger) (api.Completer, error) {
			return te.mock, nil
		},
		PickConversation: func(*history.History) (*history.Conversation, error) {
			return nil, errors.New("picker not configured")
		},
		CopyToClipboard: func(text string) error {
			te.clipboard = append(te.clipboard, text)
			return nil
		},
		IsTTY:         func() bool { return false },
		TerminalWidth: func() int { return 80 },
	}
	return te
}

func (te *testEnv) historyPath() string {
	return filepath.Join(te.dir, "history.json")
}

func (te *testEnv) run(args ...string) error {
	cmd := NewRootCmd(te.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (te *testEnv) loadHistory(t *testing.T) *history.History {
	t.Helper()
	h, err := history.NewStore(te.historyPath()).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return h
}

// seedHistory writes three conversations; conversation 1 is current
func (te *testEnv) seedHistory(t *testing.T) {
	t.Helper()

	h := history.New()
	for _, q := range []string{"What is Go?", "Explain channels", "Write a haiku"} {
		conv := h.NewConversation(nil)
		conv.Append(models.NewUserMessage(q), models.NewAssistantMessage("answer to "+q))
	}
	if _, err := h.Select(1); err != nil {
		t.Fatal(err)
	}
	if err := history.NewStore(te.historyPath()).Save(h); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
}
