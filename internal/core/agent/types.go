package agent

import "time"

// MessageRole enumerates the chat roles supported by the conversation loop.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ChatMessage stores a single message exchanged with the model.
type ChatMessage struct {
	Role       MessageRole
	Content    string
	ToolCallID string
	Name       string
	Timestamp  time.Time
	ToolCalls  []ToolCall
}

// ToolCall stores metadata for an assistant tool invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// TokenUsage mirrors the usage block returned by the chat completions API.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the decoded result of a single chat request: the assistant's
// text, any tool calls it issued, and the token accounting for the request.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
	Usage     TokenUsage
}

// EventType identifies the kind of event surfaced to the host UI.
type EventType string

const (
	EventTypeStatus           EventType = "status"
	EventTypeError            EventType = "error"
	EventTypeAssistantMessage EventType = "assistant_message"
	EventTypeToolCall         EventType = "tool_call"
	EventTypeToolResult       EventType = "tool_result"
)

// StatusLevel qualifies status events for display purposes.
type StatusLevel string

const (
	StatusLevelInfo  StatusLevel = "info"
	StatusLevelWarn  StatusLevel = "warn"
	StatusLevelError StatusLevel = "error"
)

// Event is the outward-facing notification emitted while a prompt runs.
type Event struct {
	Type     EventType
	Message  string
	Level    StatusLevel
	Metadata map[string]any
}
