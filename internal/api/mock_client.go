package api

import (
	"context"
	"sync"

	"github.com/diogo/helper/internal/models"
)

// MockClient is a Completer for tests. It records every call and replies
// with Reply (or Err).
type MockClient struct {
	Reply *models.Completion
	Err   error

	mu       sync.Mutex
	Calls    int
	Model    string
	Messages []models.Message
}

// Ensure MockClient implements Completer
var _ Completer = (*MockClient)(nil)

// NewMockClient returns a MockClient answering with an assistant message
func NewMockClient(reply string) *MockClient {
	return &MockClient{
		Reply: &models.Completion{
			ID:           "mock",
			Message:      models.NewAssistantMessage(reply),
			FinishReason: "stop",
		},
	}
}

func (m *MockClient) Complete(ctx context.Context, model string, messages []models.Message) (*models.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.Model = model
	m.Messages = append([]models.Message(nil), messages...)

	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.Reply, nil
}
