package models

// Usage reports token accounting returned by the completion endpoint
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Completion is the parsed result of a single chat completion request
type Completion struct {
	ID           string
	Model        string
	Message      Message
	FinishReason string
	Usage        Usage
}

// Text returns the reply content
func (c *Completion) Text() string {
	if c == nil {
		return ""
	}
	return c.Message.Content
}
