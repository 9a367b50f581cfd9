package api

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/models"
)

// LangChainClient is the Completer for the "langchain" provider
type LangChainClient struct {
	llm     llms.Model
	timeout time.Duration
	logger  *zap.Logger
}

// Ensure LangChainClient implements Completer
var _ Completer = (*LangChainClient)(nil)

// NewLangChainClient creates a client backed by the langchaingo OpenAI LLM.
// A positive timeout bounds each completion.
func NewLangChainClient(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) (*LangChainClient, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, apierrors.NewConfigErrorWithCause("langchain provider", err)
	}
	return NewLangChainClientWithModel(llm, timeout, logger), nil
}

// NewLangChainClientWithModel wraps an existing langchaingo model
func NewLangChainClientWithModel(llm llms.Model, timeout time.Duration, logger *zap.Logger) *LangChainClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangChainClient{llm: llm, timeout: timeout, logger: logger}
}

// Complete sends messages through langchaingo and returns the first choice
func (c *LangChainClient) Complete(ctx context.Context, model string, messages []models.Message) (*models.Completion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	content := messageContents(messages)

	c.logger.Debug("sending chat completion via langchain",
		zap.String("model", model),
		zap.Int("messages", len(messages)))

	resp, err := c.llm.GenerateContent(ctx, content, llms.WithModel(model))
	if err != nil {
		return nil, apierrors.NewNetworkError("chat completion", "langchain", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, fmt.Errorf("choices: %w", apierrors.ErrNoContent)
	}

	choice := resp.Choices[0]
	reply := models.NewAssistantMessage(choice.Content)
	if fc := choiceFunctionCall(choice); fc != nil {
		reply.FunctionCall = &models.FunctionCall{
			Name:      fc.Name,
			Arguments: fc.Arguments,
		}
	}

	// langchaingo reports a null content as "", so an empty reply without a
	// function call is treated as missing
	if reply.Content == "" && reply.FunctionCall == nil {
		return nil, fmt.Errorf("choices.0: %w", apierrors.ErrNoContent)
	}

	return &models.Completion{
		Model:        model,
		Message:      reply,
		FinishReason: choice.StopReason,
		Usage: models.Usage{
			PromptTokens:     generationInt(choice.GenerationInfo, "PromptTokens"),
			CompletionTokens: generationInt(choice.GenerationInfo, "CompletionTokens"),
			TotalTokens:      generationInt(choice.GenerationInfo, "TotalTokens"),
		},
	}, nil
}

// messageContents converts stored messages in order. An assistant function
// call becomes a tool call part, and the function message answering it
// becomes the matching tool response, so name and payload are replayed.
func messageContents(messages []models.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	pending := make(map[string]string) // function name -> tool call id

	for i, msg := range messages {
		switch {
		case msg.Role == models.RoleAssistant && msg.FunctionCall != nil:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextPart(msg.Content))
			}
			id := fmt.Sprintf("call_%d", i)
			pending[msg.FunctionCall.Name] = id
			mc.Parts = append(mc.Parts, llms.ToolCall{
				ID:   id,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      msg.FunctionCall.Name,
					Arguments: msg.FunctionCall.Arguments,
				},
			})
			content = append(content, mc)

		case msg.Role == models.RoleFunction && pending[msg.Name] != "":
			content = append(content, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: pending[msg.Name],
					Name:       msg.Name,
					Content:    msg.Content,
				}},
			})
			delete(pending, msg.Name)

		default:
			content = append(content, llms.TextParts(chatMessageType(msg.Role), msg.Content))
		}
	}

	return content
}

func choiceFunctionCall(choice *llms.ContentChoice) *llms.FunctionCall {
	if choice.FuncCall != nil {
		return choice.FuncCall
	}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall != nil {
			return tc.FunctionCall
		}
	}
	return nil
}

func chatMessageType(role models.Role) llms.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	case models.RoleFunction:
		return llms.ChatMessageTypeFunction
	default:
		return llms.ChatMessageTypeHuman
	}
}

func generationInt(info map[string]any, key string) int64 {
	switch v := info[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
