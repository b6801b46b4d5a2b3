package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Handler executes one tool call. Handlers return a human-readable result
// string in both the success and failure cases; they never return an error
// because the result is fed back to the model verbatim either way.
type Handler func(ctx context.Context, args map[string]any) string

// Tool is an explicit descriptor: name, description, the JSON schema for the
// arguments, and the handler invoked when the model calls it.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

// Registry holds the tools advertised to the model. Argument schemas are
// compiled once at registration and every call is validated before its
// handler runs.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	tools    map[string]Tool
	compiled map[string]*gojsonschema.Schema
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		compiled: make(map[string]*gojsonschema.Schema),
	}
}

// Register adds a tool. The name must be unique, the handler non-nil, and the
// parameter schema must compile as a JSON schema.
func (r *Registry) Register(tool Tool) error {
	if strings.TrimSpace(tool.Name) == "" {
		return fmt.Errorf("agent: tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("agent: tool %s has no handler", tool.Name)
	}
	if tool.Parameters == nil {
		return fmt.Errorf("agent: tool %s has no parameter schema", tool.Name)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.Parameters))
	if err != nil {
		return fmt.Errorf("agent: tool %s schema: %w", tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("agent: tool %s already registered", tool.Name)
	}
	r.order = append(r.order, tool.Name)
	r.tools[tool.Name] = tool
	r.compiled[tool.Name] = compiled
	return nil
}

// MustRegister is Register for static tool sets assembled at startup.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Tools returns the registered descriptors in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Execute looks up a tool by name, validates rawArgs against its schema, and
// runs the handler. Failures come back as descriptive strings so they can be
// handed to the model as a tool result; a panicking handler is contained the
// same way.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			result = fmt.Sprintf("error: tool %s panicked: %v", name, rec)
		}
	}()

	r.mu.RLock()
	tool, known := r.tools[name]
	compiled := r.compiled[name]
	r.mu.RUnlock()
	if !known {
		return fmt.Sprintf("error: unknown tool: %s", name)
	}

	if strings.TrimSpace(rawArgs) == "" {
		rawArgs = "{}"
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return fmt.Sprintf("error: tool %s arguments are not valid JSON: %v", name, err)
	}

	validation, err := compiled.Validate(gojsonschema.NewStringLoader(rawArgs))
	if err != nil {
		return fmt.Sprintf("error: tool %s argument validation failed: %v", name, err)
	}
	if !validation.Valid() {
		issues := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Sprintf("error: tool %s arguments failed schema validation: %s", name, strings.Join(issues, "; "))
	}

	return tool.Handler(ctx, args)
}
