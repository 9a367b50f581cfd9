package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/helper/internal/history"
	"github.com/diogo/helper/internal/models"
)

func newTestHistory() *history.History {
	h := history.New()
	for _, text := range []string{"first question", "second question", "third question"} {
		conv := h.NewConversation(nil)
		conv.Append(models.NewUserMessage(text), models.NewAssistantMessage("answer"))
	}
	h.CurrentConversationID = 1
	return h
}

func sendKey(m PickerModel, k string) (PickerModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, cmd := m.Update(msg)
	return updated.(PickerModel), cmd
}

func TestNewPickerModel_CursorOnCurrent(t *testing.T) {
	m := NewPickerModel(newTestHistory())

	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	if len(m.conversations) != 3 {
		t.Errorf("conversations = %d, want 3", len(m.conversations))
	}
	if m.Init() != nil {
		t.Error("Init should not return a command")
	}
}

func TestPickerModel_Navigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantCursor int
	}{
		{"down", []string{"down"}, 2},
		{"j", []string{"j"}, 2},
		{"down wraps", []string{"down", "down"}, 0},
		{"up", []string{"up"}, 0},
		{"k wraps", []string{"k", "k"}, 2},
		{"top", []string{"g"}, 0},
		{"bottom", []string{"G"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPickerModel(newTestHistory())
			for _, k := range tt.keys {
				m, _ = sendKey(m, k)
			}
			if m.cursor != tt.wantCursor {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.wantCursor)
			}
		})
	}
}

func TestPickerModel_Select(t *testing.T) {
	m := NewPickerModel(newTestHistory())
	m, _ = sendKey(m, "down")
	m, cmd := sendKey(m, "enter")

	if cmd == nil {
		t.Fatal("enter should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter should return tea.Quit")
	}

	conv, confirmed := m.Selected()
	if !confirmed || conv == nil || conv.ID != 2 {
		t.Errorf("Selected() = %v, %v; want conversation 2", conv, confirmed)
	}
}

func TestPickerModel_Quit(t *testing.T) {
	for _, k := range []string{"esc", "q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m := NewPickerModel(newTestHistory())
			m, cmd := sendKey(m, k)

			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, confirmed := m.Selected(); confirmed {
				t.Error("quitting should not confirm a selection")
			}
		})
	}
}

func TestPickerModel_EmptyHistory(t *testing.T) {
	m := NewPickerModel(history.New())

	m, cmd := sendKey(m, "enter")
	if cmd != nil {
		t.Error("enter on empty list should do nothing")
	}
	if _, confirmed := m.Selected(); confirmed {
		t.Error("nothing should be selected")
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if view := updated.View(); !strings.Contains(view, "No conversations") {
		t.Errorf("view should mention empty history:\n%s", view)
	}
}

func TestPickerModel_View(t *testing.T) {
	m := NewPickerModel(newTestHistory())

	if view := m.View(); !strings.Contains(view, "Initializing") {
		t.Errorf("view before window size = %q", view)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := updated.View()

	for _, want := range []string{"Select Conversation", "first question", "third question", "(2 messages)", "*", "enter"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q:\n%s", want, view)
		}
	}
}

func TestPickerModel_ViewScrolls(t *testing.T) {
	h := history.New()
	for i := 0; i < 30; i++ {
		h.NewConversation(nil).Append(models.NewUserMessage("q"))
	}
	h.CurrentConversationID = 0

	m := NewPickerModel(h)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 15})
	m = updated.(PickerModel)
	m, _ = sendKey(m, "G")

	view := m.View()
	if !strings.Contains(view, " 29  q") {
		t.Errorf("last conversation should be visible after G:\n%s", view)
	}
	if !strings.Contains(view, "...") {
		t.Error("expected scroll indicator")
	}
}
