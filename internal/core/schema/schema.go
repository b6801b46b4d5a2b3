// Package schema builds the JSON-schema parameter descriptions advertised to
// the model for each tool. Schemas are supplied explicitly at registration
// time; nothing is inferred from Go types.
package schema

// Object assembles an object schema from named property schemas. The required
// list controls which properties the model must supply; additional properties
// are always rejected so tool arguments stay closed.
func Object(properties map[string]any, required ...string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	object := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		object["required"] = required
	}
	return object
}

// String describes a string-valued parameter.
func String(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// Number describes a floating-point parameter.
func Number(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

// Integer describes an integer parameter.
func Integer(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// Boolean describes a boolean parameter.
func Boolean(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

// Array describes an array parameter whose items follow the given schema.
func Array(items map[string]any, description string) map[string]any {
	return map[string]any{"type": "array", "items": items, "description": description}
}

// Enum describes a string parameter restricted to a fixed value set.
func Enum(description string, values ...string) map[string]any {
	options := make([]any, len(values))
	for i, v := range values {
		options[i] = v
	}
	return map[string]any{"type": "string", "description": description, "enum": options}
}
