package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/models"
)

const maxErrorBody = 4096

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
}

// Complete sends messages in order and returns the first choice of the reply
func (c *Client) Complete(ctx context.Context, model string, messages []models.Message) (*models.Completion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := buildPayload(model, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	endpoint := c.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("sending chat completion",
		zap.String("endpoint", endpoint),
		zap.String("model", model),
		zap.Int("messages", len(messages)),
		zap.Int("bytes", len(payload)))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError("chat completion", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, "chat completion failed", string(errorBody))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("read response", endpoint, err)
	}

	completion, err := parseCompletion(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("chat completion received",
		zap.String("id", completion.ID),
		zap.String("finish_reason", completion.FinishReason),
		zap.Int64("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int64("completion_tokens", completion.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return completion, nil
}

// buildPayload encodes the request body. Messages keep their stored order.
func buildPayload(model string, messages []models.Message) ([]byte, error) {
	return json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
	})
}

// parseCompletion extracts the first choice from a chat completion response
func parseCompletion(body []byte) (*models.Completion, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	root := gjson.ParseBytes(body)

	if apiErr := root.Get("error.message"); apiErr.Exists() {
		return nil, apierrors.NewParseError(fmt.Sprintf("API returned error: %s", apiErr.String()), "error.message")
	}

	msg := root.Get("choices.0.message")
	if !msg.Exists() || !msg.IsObject() {
		return nil, apierrors.NewParseError("missing reply message", "choices.0.message")
	}

	role := models.Role(msg.Get("role").String())
	if role == "" {
		return nil, apierrors.NewParseError("reply message has no role", "choices.0.message.role")
	}
	if !role.Valid() {
		return nil, apierrors.NewParseError(fmt.Sprintf("unknown reply role %q", role), "choices.0.message.role")
	}

	reply := models.Message{
		Role:    role,
		Content: msg.Get("content").String(),
		Name:    msg.Get("name").String(),
	}

	if fc := msg.Get("function_call"); fc.IsObject() {
		reply.FunctionCall = &models.FunctionCall{
			Name:      fc.Get("name").String(),
			Arguments: fc.Get("arguments").String(),
		}
	}

	content := msg.Get("content")
	if (!content.Exists() || content.Type == gjson.Null) && reply.FunctionCall == nil {
		return nil, fmt.Errorf("choices.0.message: %w", apierrors.ErrNoContent)
	}

	return &models.Completion{
		ID:           root.Get("id").String(),
		Model:        root.Get("model").String(),
		Message:      reply,
		FinishReason: root.Get("choices.0.finish_reason").String(),
		Usage: models.Usage{
			PromptTokens:     root.Get("usage.prompt_tokens").Int(),
			CompletionTokens: root.Get("usage.completion_tokens").Int(),
			TotalTokens:      root.Get("usage.total_tokens").Int(),
		},
	}, nil
}
