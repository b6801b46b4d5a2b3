package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glasshouse/diffagent/internal/core/schema"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echo the value argument",
		Parameters: schema.Object(map[string]any{
			"value": schema.String("Value to echo."),
		}, "value"),
		Handler: func(_ context.Context, args map[string]any) string {
			value, _ := args["value"].(string)
			return value
		},
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	registry := NewRegistry()

	require.Error(t, registry.Register(Tool{Name: "  "}))
	require.Error(t, registry.Register(Tool{Name: "no-handler", Parameters: schema.Object(nil)}))
	require.Error(t, registry.Register(Tool{
		Name:    "no-schema",
		Handler: func(context.Context, map[string]any) string { return "" },
	}))

	require.NoError(t, registry.Register(echoTool("echo")))
	require.Error(t, registry.Register(echoTool("echo")), "duplicate names must be rejected")
}

func TestRegistryToolsKeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool("first")))
	require.NoError(t, registry.Register(echoTool("second")))
	require.NoError(t, registry.Register(echoTool("third")))

	tools := registry.Tools()
	require.Len(t, tools, 3)
	require.Equal(t, "first", tools[0].Name)
	require.Equal(t, "second", tools[1].Name)
	require.Equal(t, "third", tools[2].Name)
}

func TestRegistryExecute(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool("echo")))

	result := registry.Execute(context.Background(), "echo", `{"value":"hello"}`)
	require.Equal(t, "hello", result)
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	registry := NewRegistry()
	result := registry.Execute(context.Background(), "missing", `{}`)
	require.Equal(t, "error: unknown tool: missing", result)
}

func TestRegistryExecuteInvalidJSON(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool("echo")))

	result := registry.Execute(context.Background(), "echo", `{not json`)
	require.Contains(t, result, "arguments are not valid JSON")
}

func TestRegistryExecuteSchemaViolation(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool("echo")))

	result := registry.Execute(context.Background(), "echo", `{"value":42}`)
	require.Contains(t, result, "failed schema validation")

	result = registry.Execute(context.Background(), "echo", `{}`)
	require.Contains(t, result, "failed schema validation")

	result = registry.Execute(context.Background(), "echo", `{"value":"x","extra":true}`)
	require.Contains(t, result, "failed schema validation")
}

func TestRegistryExecuteContainsPanic(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Tool{
		Name:        "boom",
		Description: "always panics",
		Parameters:  schema.Object(map[string]any{}),
		Handler: func(context.Context, map[string]any) string {
			panic("kaboom")
		},
	}))

	result := registry.Execute(context.Background(), "boom", `{}`)
	require.Contains(t, result, "tool boom panicked: kaboom")
}

func TestRegistryExecuteEmptyArgumentsDefaultToObject(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Tool{
		Name:        "noargs",
		Description: "takes nothing",
		Parameters:  schema.Object(map[string]any{}),
		Handler: func(context.Context, map[string]any) string {
			return "ok"
		},
	}))

	require.Equal(t, "ok", registry.Execute(context.Background(), "noargs", ""))
}
