package history

import (
	"errors"
	"strings"
	"testing"

	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/models"
)

func TestNewConversation_FirstRunGetsIDZero(t *testing.T) {
	h := New()
	system := models.NewSystemMessage("be brief")

	conv := h.NewConversation(&system)

	if conv.ID != 0 {
		t.Errorf("ID = %d, want 0", conv.ID)
	}
	if h.CurrentConversationID != 0 {
		t.Errorf("CurrentConversationID = %d, want 0", h.CurrentConversationID)
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Role != models.RoleSystem {
		t.Errorf("Messages = %+v, want a single system message", conv.Messages)
	}
}

func TestNewConversation_WithoutSystemMessage(t *testing.T) {
	h := New()
	conv := h.NewConversation(nil)

	if len(conv.Messages) != 0 {
		t.Errorf("expected empty conversation, got %d messages", len(conv.Messages))
	}
	if conv.Messages == nil {
		t.Error("Messages should be an empty slice so it serializes as []")
	}
}

func TestNewConversation_IDsAreNeverReused(t *testing.T) {
	h := New()
	for i := 0; i < 3; i++ {
		h.NewConversation(nil)
	}

	// Removing the newest conversation must not free its id
	delete(h.Conversations, 2)

	conv := h.NewConversation(nil)
	if conv.ID != 3 {
		t.Errorf("ID = %d, want 3", conv.ID)
	}
	if h.NextConversationID != 4 {
		t.Errorf("NextConversationID = %d, want 4", h.NextConversationID)
	}
}

func TestSelect(t *testing.T) {
	h := New()
	h.NewConversation(nil)
	h.NewConversation(nil)

	conv, err := h.Select(0)
	if err != nil {
		t.Fatalf("Select(0) failed: %v", err)
	}
	if conv.ID != 0 || h.CurrentConversationID != 0 {
		t.Errorf("Select(0) did not make conversation 0 current")
	}
}

func TestSelect_UnknownID(t *testing.T) {
	h := New()
	h.NewConversation(nil)

	_, err := h.Select(42)
	if !errors.Is(err, apierrors.ErrConversationNotFound) {
		t.Fatalf("Select(42) error = %v, want ErrConversationNotFound", err)
	}

	var lookupErr *apierrors.LookupError
	if !errors.As(err, &lookupErr) || lookupErr.ID != 42 {
		t.Errorf("expected LookupError for id 42, got %v", err)
	}
	if h.CurrentConversationID != 0 {
		t.Errorf("failed Select changed current conversation to %d", h.CurrentConversationID)
	}
}

func TestCurrent_EmptyHistory(t *testing.T) {
	h := New()
	if _, err := h.Current(); !errors.Is(err, apierrors.ErrConversationNotFound) {
		t.Errorf("Current() error = %v, want ErrConversationNotFound", err)
	}
}

func TestPut_AdvancesNextID(t *testing.T) {
	h := New()
	h.Put(&Conversation{ID: 7, Messages: []models.Message{}})

	if h.NextConversationID != 8 {
		t.Errorf("NextConversationID = %d, want 8", h.NextConversationID)
	}
	if conv := h.NewConversation(nil); conv.ID != 8 {
		t.Errorf("new conversation ID = %d, want 8", conv.ID)
	}
}

func TestIDsAndList_Sorted(t *testing.T) {
	h := New()
	for _, id := range []int64{5, 1, 3} {
		h.Put(&Conversation{ID: id})
	}

	ids := h.IDs()
	want := []int64{1, 3, 5}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}

	list := h.List()
	for i := range want {
		if list[i].ID != want[i] {
			t.Errorf("List()[%d].ID = %d, want %d", i, list[i].ID, want[i])
		}
	}
}

func TestConversation_Helpers(t *testing.T) {
	conv := &Conversation{}
	if conv.Last() != nil {
		t.Error("Last() of empty conversation should be nil")
	}
	if conv.Title() != "(empty)" {
		t.Errorf("Title() = %q, want (empty)", conv.Title())
	}
	if conv.SystemPrompt() != "" {
		t.Errorf("SystemPrompt() = %q, want empty", conv.SystemPrompt())
	}

	conv.Append(
		models.NewSystemMessage("sys"),
		models.NewUserMessage("  first line\nsecond line"),
		models.NewAssistantMessage("answer"),
	)

	if conv.SystemPrompt() != "sys" {
		t.Errorf("SystemPrompt() = %q, want sys", conv.SystemPrompt())
	}
	if conv.Title() != "first line" {
		t.Errorf("Title() = %q, want 'first line'", conv.Title())
	}
	if last := conv.Last(); last == nil || last.Content != "answer" {
		t.Errorf("Last() = %+v", last)
	}
}

func TestConversation_TitleTruncated(t *testing.T) {
	conv := &Conversation{Messages: []models.Message{models.NewUserMessage(strings.Repeat("é", 80))}}

	title := conv.Title()
	if !strings.HasSuffix(title, "...") {
		t.Errorf("Title() = %q, expected truncation", title)
	}
	if got := len([]rune(strings.TrimSuffix(title, "..."))); got != 50 {
		t.Errorf("truncated title has %d runes, want 50", got)
	}
}
