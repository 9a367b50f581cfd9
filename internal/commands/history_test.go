package commands

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/history"
)

func TestHistoryCommand(t *testing.T) {
	cmd := newHistoryCmd(&app{deps: newTestEnv(t).deps})

	if cmd.Use != "history" {
		t.Errorf("Expected use 'history', got %s", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	expectedSubcommands := []string{"list", "show", "export", "search", "use", "pick"}
	for _, sub := range expectedSubcommands {
		found := false
		for _, c := range cmd.Commands() {
			if c.Name() == sub {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Subcommand %s not found", sub)
		}
	}
}

func TestHistoryList(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	if err := te.run("history", "list"); err != nil {
		t.Fatalf("history list failed: %v", err)
	}

	out := te.stdout.String()
	for _, want := range []string{"What is Go?", "Explain channels", "Write a haiku"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	var currentLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "*") {
			currentLine = line
		}
	}
	if !strings.Contains(currentLine, "Explain channels") {
		t.Errorf("current marker on wrong line: %q", currentLine)
	}
}

func TestHistoryList_Empty(t *testing.T) {
	te := newTestEnv(t)

	if err := te.run("history", "list"); err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(te.stdout.String(), "No conversations found") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
	if _, err := os.Stat(te.historyPath()); !os.IsNotExist(err) {
		t.Error("listing should not create the history file")
	}
}

func TestHistoryList_HistoryFlag(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	other := filepath.Join(t.TempDir(), "other.json")
	if err := te.run("history", "list", "-H", other); err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(te.stdout.String(), "No conversations found") {
		t.Errorf("--history was ignored: %q", te.stdout.String())
	}
}

func TestHistoryShow(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	if err := te.run("history", "show", "@last"); err != nil {
		t.Fatalf("history show failed: %v", err)
	}

	out := te.stdout.String()
	if !strings.Contains(out, "ID: 2") {
		t.Errorf("expected conversation 2:\n%s", out)
	}
	if !strings.Contains(out, "answer to Write a haiku") {
		t.Errorf("expected assistant reply:\n%s", out)
	}
}

func TestHistoryShow_Unknown(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	err := te.run("history", "show", "9")
	if !errors.Is(err, apierrors.ErrConversationNotFound) {
		t.Fatalf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestHistoryExport(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	t.Run("markdown to stdout", func(t *testing.T) {
		te.stdout.Reset()
		if err := te.run("history", "export", "0"); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(te.stdout.String(), "# Conversation 0") {
			t.Errorf("stdout = %q", te.stdout.String())
		}
	})

	t.Run("json to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "conv.json")
		if err := te.run("history", "export", "@current", "--format", "json", "-o", out); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("export not written: %v", err)
		}
		var conv history.Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			t.Fatalf("export is not JSON: %v", err)
		}
		msgs := conv.Messages
		if len(msgs) != 2 || msgs[0].Content != "Explain channels" {
			t.Errorf("exported messages = %+v", msgs)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		err := te.run("history", "export", "0", "--format", "pdf")
		if apierrors.KindOf(err) != apierrors.KindConfig {
			t.Errorf("KindOf = %v, want config", apierrors.KindOf(err))
		}
	})
}

func TestHistorySearch(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	if err := te.run("history", "search", "CHANNELS"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	out := te.stdout.String()
	if !strings.Contains(out, "Explain channels") {
		t.Errorf("expected match:\n%s", out)
	}
	if strings.Contains(out, "haiku") {
		t.Errorf("unexpected match:\n%s", out)
	}

	te.stdout.Reset()
	if err := te.run("history", "search", "nothing-matches"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(te.stdout.String(), "No conversations match") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
}

func TestHistoryUse(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	if err := te.run("history", "use", "@first"); err != nil {
		t.Fatalf("history use failed: %v", err)
	}

	h := te.loadHistory(t)
	if h.CurrentConversationID != 0 {
		t.Errorf("current = %d, want 0", h.CurrentConversationID)
	}
	if !strings.Contains(te.stdout.String(), "Current conversation: 0") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
}

func TestHistoryUse_UnknownLeavesFile(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)
	before, _ := os.ReadFile(te.historyPath())

	if err := te.run("history", "use", "17"); err == nil {
		t.Fatal("expected error")
	}

	after, _ := os.ReadFile(te.historyPath())
	if string(before) != string(after) {
		t.Error("history file changed")
	}
}

func TestHistoryPick(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)

	te.deps.PickConversation = func(h *history.History) (*history.Conversation, error) {
		return h.Get(2)
	}

	if err := te.run("history", "pick"); err != nil {
		t.Fatalf("history pick failed: %v", err)
	}
	if h := te.loadHistory(t); h.CurrentConversationID != 2 {
		t.Errorf("current = %d, want 2", h.CurrentConversationID)
	}
}

func TestHistoryPick_Cancelled(t *testing.T) {
	te := newTestEnv(t)
	te.seedHistory(t)
	before, _ := os.ReadFile(te.historyPath())

	te.deps.PickConversation = func(*history.History) (*history.Conversation, error) {
		return nil, nil
	}

	if err := te.run("history", "pick"); err != nil {
		t.Fatalf("history pick failed: %v", err)
	}

	after, _ := os.ReadFile(te.historyPath())
	if string(before) != string(after) {
		t.Error("cancelled pick changed the history file")
	}
}
