package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Config carries the values required to reach the chat completions endpoint.
// Environment lookups happen at the process boundary; by the time a Config
// reaches the client it holds plain values only.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single HTTP request. Zero selects the default.
	Timeout time.Duration
	// Retry controls transient-failure retries. Nil selects the default.
	Retry *RetryConfig
}

// Client wraps the HTTP client required to call the Chat Completions API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     Logger
	metrics    Metrics
}

// NewClient configures a chat client from explicit configuration.
func NewClient(config Config, logger Logger, metrics Metrics) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("agent: API key is required")
	}
	if config.Model == "" {
		return nil, errors.New("agent: model is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.Retry == nil {
		config.Retry = DefaultRetryConfig()
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Chat sends the accumulated history plus the advertised tools and returns
// the assistant's reply. Transient failures (timeouts, 5xx, 429) are retried
// with exponential backoff before the call is reported as failed.
func (c *Client) Chat(ctx context.Context, history []ChatMessage, tools []Tool) (Completion, error) {
	payload := chatCompletionRequest{
		Model:    c.config.Model,
		Messages: buildMessages(history),
	}
	if len(tools) > 0 {
		payload.Tools = buildToolSpecs(tools)
		payload.ToolChoice = "auto"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("agent: encode request: %w", err)
	}

	var completion Completion
	started := time.Now()
	err = executeWithRetry(ctx, c.config.Retry, func() error {
		result, callErr := c.doRequest(ctx, body)
		if callErr != nil {
			return callErr
		}
		completion = result
		return nil
	})
	c.metrics.RecordAPICall(time.Since(started), err == nil)
	if err != nil {
		c.logger.Error(ctx, "chat completion failed", err, Field("model", c.config.Model))
		return Completion{}, err
	}

	c.metrics.RecordTokenUsage(completion.Usage)
	c.logger.Debug(ctx, "chat completion ok",
		Field("model", c.config.Model),
		Field("tool_calls", len(completion.ToolCalls)),
		Field("total_tokens", completion.Usage.TotalTokens))
	return completion, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (Completion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("agent: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Completion{}, &retryableAPIError{err: err, retryable: isRetryableError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return Completion{}, &retryableAPIError{
			err:        fmt.Errorf("agent: status %s: %s", resp.Status, string(msg)),
			statusCode: resp.StatusCode,
			retryable:  isRetryableStatusCode(resp.StatusCode),
		}
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Completion{}, fmt.Errorf("agent: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Completion{}, errors.New("agent: response contained no choices")
	}

	choice := decoded.Choices[0]
	completion := Completion{Content: choice.Message.Content, Usage: decoded.Usage}
	for _, call := range choice.Message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return completion, nil
}

func buildMessages(history []ChatMessage) []chatMessage {
	messages := make([]chatMessage, 0, len(history))
	for _, entry := range history {
		msg := chatMessage{
			Role:    string(entry.Role),
			Content: entry.Content,
		}
		if entry.Role == RoleTool {
			msg.Name = entry.Name
			msg.ToolCallID = entry.ToolCallID
		}
		if len(entry.ToolCalls) > 0 {
			calls := make([]assistantToolCall, 0, len(entry.ToolCalls))
			for _, call := range entry.ToolCalls {
				calls = append(calls, assistantToolCall{
					ID:   call.ID,
					Type: "function",
					Function: assistantToolFunction{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			msg.ToolCalls = calls
		}
		messages = append(messages, msg)
	}
	return messages
}

func buildToolSpecs(tools []Tool) []toolSpecification {
	specs := make([]toolSpecification, 0, len(tools))
	for _, tool := range tools {
		specs = append(specs, toolSpecification{
			Type: "function",
			Function: functionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return specs
}

// chatCompletionRequest and related types are intentionally minimal mirrors of
// the OpenAI Chat Completions API payloads. They allow us to construct the
// request without pulling in a heavy client dependency.
type chatCompletionRequest struct {
	Model      string              `json:"model"`
	Messages   []chatMessage       `json:"messages"`
	Tools      []toolSpecification `json:"tools,omitempty"`
	ToolChoice string              `json:"tool_choice,omitempty"`
}

type chatMessage struct {
	Role       string              `json:"role"`
	Content    string              `json:"content,omitempty"`
	Name       string              `json:"name,omitempty"`
	ToolCallID string              `json:"tool_call_id,omitempty"`
	ToolCalls  []assistantToolCall `json:"tool_calls,omitempty"`
}

type assistantToolCall struct {
	ID       string                `json:"id"`
	Type     string                `json:"type"`
	Function assistantToolFunction `json:"function"`
}

type assistantToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpecification struct {
	Type     string             `json:"type"`
	Function functionDefinition `json:"function"`
}

type functionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage TokenUsage `json:"usage"`
}
