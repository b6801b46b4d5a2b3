package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedServer returns each canned response body in order, then repeats the
// last one.
func scriptedServer(t *testing.T, responses []map[string]any) *httptest.Server {
	t.Helper()
	index := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		response := responses[index]
		if index < len(responses)-1 {
			index++
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func toolCallResponse(id, name, arguments string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": "",
					"tool_calls": []any{
						map[string]any{
							"id": id,
							"function": map[string]any{
								"name":      name,
								"arguments": arguments,
							},
						},
					},
				},
			},
		},
	}
}

func finalResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
	}
}

func newTestAgent(t *testing.T, baseURL string, registry *Registry, maxSteps int) *Agent {
	t.Helper()
	a, err := New(Options{
		Config:   Config{APIKey: "test-key", Model: "test-model", BaseURL: baseURL},
		Registry: registry,
		MaxSteps: maxSteps,
		Metrics:  NewInMemoryMetrics(),
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestAskPlainAnswer(t *testing.T) {
	server := scriptedServer(t, []map[string]any{finalResponse("just an answer")})
	defer server.Close()

	a := newTestAgent(t, server.URL, nil, 0)
	answer, err := a.Ask(context.Background(), "question")
	require.NoError(t, err)
	require.Equal(t, "just an answer", answer)

	history := a.History()
	require.Len(t, history, 3)
	require.Equal(t, RoleSystem, history[0].Role)
	require.Equal(t, RoleUser, history[1].Role)
	require.Equal(t, RoleAssistant, history[2].Role)
}

func TestAskRunsToolCallsAndFeedsResultsBack(t *testing.T) {
	server := scriptedServer(t, []map[string]any{
		toolCallResponse("call-1", "echo", `{"value":"tool output"}`),
		finalResponse("done"),
	})
	defer server.Close()

	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool("echo")))

	a := newTestAgent(t, server.URL, registry, 0)
	answer, err := a.Ask(context.Background(), "use the tool")
	require.NoError(t, err)
	require.Equal(t, "done", answer)

	history := a.History()
	// system, user, assistant(tool call), tool result, assistant(final)
	require.Len(t, history, 5)
	require.Equal(t, RoleAssistant, history[2].Role)
	require.Len(t, history[2].ToolCalls, 1)
	require.Equal(t, RoleTool, history[3].Role)
	require.Equal(t, "tool output", history[3].Content)
	require.Equal(t, "call-1", history[3].ToolCallID)
	require.Equal(t, "done", history[4].Content)
}

func TestAskEmitsToolEvents(t *testing.T) {
	server := scriptedServer(t, []map[string]any{
		toolCallResponse("call-1", "echo", `{"value":"x"}`),
		finalResponse("done"),
	})
	defer server.Close()

	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool("echo")))

	a := newTestAgent(t, server.URL, registry, 0)
	_, err := a.Ask(context.Background(), "go")
	require.NoError(t, err)

	var types []EventType
	for len(a.Events()) > 0 {
		types = append(types, (<-a.Events()).Type)
	}
	require.Contains(t, types, EventTypeToolCall)
	require.Contains(t, types, EventTypeToolResult)
	require.Contains(t, types, EventTypeAssistantMessage)
}

func TestAskStopsAtMaxSteps(t *testing.T) {
	server := scriptedServer(t, []map[string]any{
		toolCallResponse("call-1", "echo", `{"value":"again"}`),
	})
	defer server.Close()

	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool("echo")))

	a := newTestAgent(t, server.URL, registry, 2)
	answer, err := a.Ask(context.Background(), "loop forever")
	require.NoError(t, err, "step exhaustion is an answer, not a failure")
	require.Equal(t, MaxStepsAnswer, answer)

	// Two full tool rounds ran before the budget cut the loop off.
	history := a.History()
	require.Equal(t, RoleTool, history[3].Role)
	require.Equal(t, RoleTool, history[5].Role)
}

func TestAskRejectsEmptyPrompt(t *testing.T) {
	server := scriptedServer(t, []map[string]any{finalResponse("unused")})
	defer server.Close()

	a := newTestAgent(t, server.URL, nil, 0)
	_, err := a.Ask(context.Background(), "   ")
	require.Error(t, err)
}

func TestAskUnknownToolResultGoesBackToModel(t *testing.T) {
	server := scriptedServer(t, []map[string]any{
		toolCallResponse("call-1", "not_registered", `{}`),
		finalResponse("recovered"),
	})
	defer server.Close()

	a := newTestAgent(t, server.URL, NewRegistry(), 0)
	answer, err := a.Ask(context.Background(), "call something odd")
	require.NoError(t, err)
	require.Equal(t, "recovered", answer)

	history := a.History()
	require.Equal(t, RoleTool, history[3].Role)
	require.Contains(t, history[3].Content, "unknown tool")
}

func TestHistoryReturnsCopy(t *testing.T) {
	server := scriptedServer(t, []map[string]any{finalResponse("answer")})
	defer server.Close()

	a := newTestAgent(t, server.URL, nil, 0)
	_, err := a.Ask(context.Background(), "question")
	require.NoError(t, err)

	history := a.History()
	history[0].Content = "tampered"
	require.NotEqual(t, "tampered", a.History()[0].Content)
}

func TestCloseIsIdempotent(t *testing.T) {
	a, err := New(Options{Config: Config{APIKey: "k", Model: "m"}})
	require.NoError(t, err)
	a.Close()
	a.Close()
}
