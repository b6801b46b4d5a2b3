package tools

import (
	"context"
	"fmt"

	"github.com/glasshouse/diffagent/internal/core/agent"
	"github.com/glasshouse/diffagent/internal/core/schema"
	"github.com/glasshouse/diffagent/pkg/editor"
	"github.com/glasshouse/diffagent/pkg/fsio"
)

func readFileTool(store fsio.Store) agent.Tool {
	return agent.Tool{
		Name:        "read_file",
		Description: "Read the full text content of a file.",
		Parameters: schema.Object(map[string]any{
			"file_path": schema.String("Path of the file to read."),
		}, "file_path"),
		Handler: func(_ context.Context, args map[string]any) string {
			path := stringArg(args, "file_path")
			if !store.Exists(path) {
				return fmt.Sprintf("error: file %s does not exist", path)
			}
			content, err := store.ReadText(path)
			if err != nil {
				return fmt.Sprintf("error: failed to read file: %v", err)
			}
			return content
		},
	}
}

func multiEditTool(store fsio.Store) agent.Tool {
	editSchema := schema.Object(map[string]any{
		"old_string":  schema.String("Exact text to replace. Empty on the first edit creates a new file."),
		"new_string":  schema.String("Replacement text. Must differ from old_string."),
		"replace_all": schema.Boolean("Replace every occurrence instead of only the first."),
	}, "old_string", "new_string")

	return agent.Tool{
		Name: "multi_edit",
		Description: "Apply an ordered batch of literal find/replace edits to one file. " +
			"The whole batch is validated first and the file is written only when every edit succeeds.",
		Parameters: schema.Object(map[string]any{
			"file_path": schema.String("Absolute path of the file to modify."),
			"edits":     schema.Array(editSchema, "Edits applied strictly in order."),
		}, "file_path", "edits"),
		Handler: func(_ context.Context, args map[string]any) string {
			path := stringArg(args, "file_path")
			rawEdits, _ := args["edits"].([]any)

			edits := make([]editor.Edit, 0, len(rawEdits))
			for _, raw := range rawEdits {
				entry, ok := raw.(map[string]any)
				if !ok {
					return "error: each edit must be an object with old_string and new_string"
				}
				edits = append(edits, editor.Edit{
					OldString:  stringArg(entry, "old_string"),
					NewString:  stringArg(entry, "new_string"),
					ReplaceAll: boolArg(entry, "replace_all"),
				})
			}

			return editor.Apply(path, edits, store)
		},
	}
}
