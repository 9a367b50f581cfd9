package history

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolve converts a user-friendly reference to a conversation id
//
// Supported references:
//   - "@current" - the current conversation
//   - "@last" - the conversation with the highest id
//   - "@first" - the conversation with the lowest id
//   - "3" - direct id
func (h *History) Resolve(ref string) (int64, error) {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return 0, fmt.Errorf("empty reference")
	}

	if len(h.Conversations) == 0 {
		return 0, fmt.Errorf("no conversations found")
	}

	ids := h.IDs()

	switch strings.ToLower(ref) {
	case "@current":
		if _, err := h.Current(); err != nil {
			return 0, err
		}
		return h.CurrentConversationID, nil
	case "@last":
		return ids[len(ids)-1], nil
	case "@first":
		return ids[0], nil
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid conversation reference '%s'\n%s", ref, ListAliases())
	}
	if _, err := h.Get(id); err != nil {
		return 0, err
	}
	return id, nil
}

// ResolveConversation resolves a reference and returns the conversation
func (h *History) ResolveConversation(ref string) (*Conversation, error) {
	id, err := h.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return h.Get(id)
}

// ListAliases returns information about supported references
func ListAliases() string {
	return `Supported references:
  @current       The current conversation
  @last          Conversation with the highest id
  @first         Conversation with the lowest id
  0, 1, 2        Conversation id`
}
