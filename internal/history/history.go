// Package history provides local conversation history storage.
//
// The whole history lives in one JSON document: the set of conversations
// keyed by integer id, plus which one is current.
package history

import (
	"fmt"
	"sort"

	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/models"
)

// Conversation is an ordered sequence of messages identified by an integer id
type Conversation struct {
	ID       int64            `json:"id"`
	Messages []models.Message `json:"messages"`
}

// Append adds messages to the end of the conversation
func (c *Conversation) Append(msgs ...models.Message) {
	c.Messages = append(c.Messages, msgs...)
}

// SystemPrompt returns the content of the leading system message, if any
func (c *Conversation) SystemPrompt() string {
	if len(c.Messages) > 0 && c.Messages[0].Role == models.RoleSystem {
		return c.Messages[0].Content
	}
	return ""
}

// Title returns the first line of the first user message, truncated
func (c *Conversation) Title() string {
	for _, msg := range c.Messages {
		if msg.Role != models.RoleUser {
			continue
		}
		return truncateRunes(firstLine(msg.Content), 50)
	}
	return "(empty)"
}

// Last returns the final message, or nil for an empty conversation
func (c *Conversation) Last() *models.Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// History is the full persisted state
type History struct {
	CurrentConversationID int64 `json:"current_conversation_id"`
	// NextConversationID is the id the next new conversation receives. It only
	// grows, so ids are never reused.
	NextConversationID int64 `json:"next_conversation_id"`
	// Revision is incremented on every save and checked against the file on
	// disk to reject writes based on a stale read.
	Revision      uint64                  `json:"revision"`
	Conversations map[int64]*Conversation `json:"conversations"`

	// state of the file when this value was loaded
	loadedRevision uint64
	persisted      bool
}

// New returns an empty history that has never been saved
func New() *History {
	return &History{
		Conversations: make(map[int64]*Conversation),
	}
}

// NewConversation creates a conversation with the next id, seeds it with the
// optional system message, and makes it current.
func (h *History) NewConversation(system *models.Message) *Conversation {
	conv := &Conversation{
		ID:       h.NextConversationID,
		Messages: []models.Message{},
	}
	if system != nil {
		conv.Messages = append(conv.Messages, *system)
	}

	h.NextConversationID++
	h.Conversations[conv.ID] = conv
	h.CurrentConversationID = conv.ID

	return conv
}

// Get returns the conversation with the given id without changing the current one
func (h *History) Get(id int64) (*Conversation, error) {
	conv, ok := h.Conversations[id]
	if !ok {
		return nil, apierrors.NewLookupError(id)
	}
	return conv, nil
}

// Select makes the conversation with the given id current. Unknown ids fail
// and leave the history unchanged.
func (h *History) Select(id int64) (*Conversation, error) {
	conv, err := h.Get(id)
	if err != nil {
		return nil, err
	}
	h.CurrentConversationID = id
	return conv, nil
}

// Current returns the current conversation
func (h *History) Current() (*Conversation, error) {
	return h.Get(h.CurrentConversationID)
}

// Put stores conv under its id, replacing any previous entry
func (h *History) Put(conv *Conversation) {
	h.Conversations[conv.ID] = conv
	if conv.ID >= h.NextConversationID {
		h.NextConversationID = conv.ID + 1
	}
}

// IDs returns all conversation ids in ascending order
func (h *History) IDs() []int64 {
	ids := make([]int64, 0, len(h.Conversations))
	for id := range h.Conversations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// List returns all conversations in ascending id order
func (h *History) List() []*Conversation {
	ids := h.IDs()
	convs := make([]*Conversation, len(ids))
	for i, id := range ids {
		convs[i] = h.Conversations[id]
	}
	return convs
}

// normalize checks the decoded document and upgrades files that predate the
// next_conversation_id field.
func (h *History) normalize() error {
	if h.Conversations == nil {
		h.Conversations = make(map[int64]*Conversation)
	}

	next := int64(0)
	for key, conv := range h.Conversations {
		if conv == nil {
			return fmt.Errorf("conversation %d is null", key)
		}
		if conv.ID != key {
			return fmt.Errorf("conversation stored under key %d has id %d", key, conv.ID)
		}
		for i, msg := range conv.Messages {
			if !msg.Role.Valid() {
				return fmt.Errorf("conversation %d message %d: unknown role %q", key, i, msg.Role)
			}
		}
		if key >= next {
			next = key + 1
		}
	}

	if h.NextConversationID < next {
		h.NextConversationID = next
	}
	return nil
}
