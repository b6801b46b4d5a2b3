// Package tools assembles the builtin tool set offered to the model: file
// reading, unified-diff patching, batched literal edits, and a few small
// demonstration tools.
package tools

import (
	"fmt"

	"github.com/glasshouse/diffagent/internal/core/agent"
	"github.com/glasshouse/diffagent/pkg/fsio"
)

// All returns every builtin tool. File-touching tools operate through store,
// with relative paths anchored at basePath.
func All(store fsio.Store, basePath string) []agent.Tool {
	return []agent.Tool{
		readFileTool(store),
		applyPatchTool(store, basePath),
		multiEditTool(store),
		calculatorTool(),
		weatherTool(),
		searchTool(),
	}
}

// RegisterAll registers every builtin tool on the registry.
func RegisterAll(registry *agent.Registry, store fsio.Store, basePath string) error {
	for _, tool := range All(store, basePath) {
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("tools: %w", err)
		}
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func numberArg(args map[string]any, key string) float64 {
	value, _ := args[key].(float64)
	return value
}

func boolArg(args map[string]any, key string) bool {
	value, _ := args[key].(bool)
	return value
}
