// Package agent implements the conversational loop that connects a chat
// model to a registry of locally executed tools. The loop is synchronous:
// one Ask call runs model round-trips and tool executions until the model
// answers without calling a tool, or the step budget runs out.
package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MaxStepsAnswer is returned as the assistant's answer when the model keeps
// calling tools until the per-prompt step budget is exhausted. Running out of
// steps is a conversational outcome, not a failure.
const MaxStepsAnswer = "maximum execution steps reached"

// Agent owns the conversation history and drives the prompt loop. Events are
// published on a buffered channel for hosts that render progress; slow or
// absent consumers never block the loop.
type Agent struct {
	opts     Options
	client   *Client
	registry *Registry

	mu      sync.Mutex
	history []ChatMessage

	events    chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

// New builds an agent from the supplied options.
func New(opts Options) (*Agent, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()

	client, err := NewClient(opts.Config, opts.Logger, opts.Metrics)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		opts:     opts,
		client:   client,
		registry: opts.Registry,
		events:   make(chan Event, opts.EventBuffer),
		closed:   make(chan struct{}),
	}
	a.history = append(a.history, ChatMessage{
		Role:      RoleSystem,
		Content:   opts.SystemPrompt,
		Timestamp: time.Now(),
	})
	return a, nil
}

// Events exposes the progress stream. The channel is closed by Close.
func (a *Agent) Events() <-chan Event {
	return a.events
}

// Close shuts the event stream down. Safe to call more than once.
func (a *Agent) Close() {
	a.closeOnce.Do(func() {
		close(a.closed)
		close(a.events)
	})
}

// History returns a copy of the conversation so far.
func (a *Agent) History() []ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := make([]ChatMessage, len(a.history))
	copy(history, a.history)
	return history
}

func (a *Agent) appendHistory(msg ChatMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, msg)
}

// emit publishes an event without ever blocking the loop. Events are dropped
// when the buffer is full or the agent is closed.
func (a *Agent) emit(event Event) {
	select {
	case <-a.closed:
		return
	default:
	}
	select {
	case a.events <- event:
	default:
	}
}

// Ask appends the prompt to the conversation and runs the loop: request a
// completion, execute any tool calls, feed the results back, repeat. The
// final assistant text is returned once the model stops calling tools;
// exhausting the step budget yields MaxStepsAnswer with a nil error.
func (a *Agent) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("agent: prompt is empty")
	}
	if TraceIDFrom(ctx) == "" {
		ctx = WithTraceID(ctx, NewTraceID())
	}

	a.appendHistory(ChatMessage{Role: RoleUser, Content: prompt, Timestamp: time.Now()})
	a.opts.Logger.Info(ctx, "prompt accepted", Field("length", len(prompt)))

	for step := 1; step <= a.opts.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		completion, err := a.client.Chat(ctx, a.History(), a.registry.Tools())
		if err != nil {
			a.emit(Event{Type: EventTypeError, Message: err.Error(), Level: StatusLevelError})
			return "", err
		}

		a.appendHistory(ChatMessage{
			Role:      RoleAssistant,
			Content:   completion.Content,
			Timestamp: time.Now(),
			ToolCalls: completion.ToolCalls,
		})

		if len(completion.ToolCalls) == 0 {
			a.emit(Event{Type: EventTypeAssistantMessage, Message: completion.Content})
			return completion.Content, nil
		}

		for _, call := range completion.ToolCalls {
			a.runToolCall(ctx, step, call)
		}
	}

	a.emit(Event{Type: EventTypeStatus, Message: MaxStepsAnswer, Level: StatusLevelWarn})
	return MaxStepsAnswer, nil
}

func (a *Agent) runToolCall(ctx context.Context, step int, call ToolCall) {
	a.emit(Event{
		Type:    EventTypeToolCall,
		Message: call.Name,
		Level:   StatusLevelInfo,
		Metadata: map[string]any{
			"step":         step,
			"tool_call_id": call.ID,
			"arguments":    call.Arguments,
		},
	})

	started := time.Now()
	result := a.registry.Execute(ctx, call.Name, call.Arguments)
	duration := time.Since(started)

	// Tool handlers signal failure through their text, not through errors.
	success := !strings.HasPrefix(result, "error")
	a.opts.Metrics.RecordToolExecution(call.Name, duration, success)
	a.opts.Logger.Debug(ctx, "tool executed",
		Field("tool", call.Name),
		Field("duration_ms", duration.Milliseconds()),
		Field("success", success))

	a.appendHistory(ChatMessage{
		Role:       RoleTool,
		Content:    result,
		ToolCallID: call.ID,
		Name:       call.Name,
		Timestamp:  time.Now(),
	})

	a.emit(Event{
		Type:    EventTypeToolResult,
		Message: summarizeResult(result),
		Level:   StatusLevelInfo,
		Metadata: map[string]any{
			"tool":         call.Name,
			"tool_call_id": call.ID,
			"result":       result,
		},
	})
}

func summarizeResult(result string) string {
	if idx := strings.IndexByte(result, '\n'); idx != -1 {
		result = result[:idx]
	}
	const limit = 200
	if len(result) > limit {
		result = result[:limit] + "..."
	}
	return result
}
