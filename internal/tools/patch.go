package tools

import (
	"context"

	"github.com/glasshouse/diffagent/internal/core/agent"
	"github.com/glasshouse/diffagent/internal/core/schema"
	"github.com/glasshouse/diffagent/pkg/fsio"
	"github.com/glasshouse/diffagent/pkg/patch"
)

func applyPatchTool(store fsio.Store, defaultBasePath string) agent.Tool {
	return agent.Tool{
		Name: "apply_patch",
		Description: "Apply a unified-diff patch (git diff style) to files on disk. " +
			"Supports multiple files per patch and new-file creation via /dev/null headers.",
		Parameters: schema.Object(map[string]any{
			"patch":     schema.String("Patch text in unified diff format."),
			"base_path": schema.String("Optional base directory for resolving relative paths."),
		}, "patch"),
		Handler: func(_ context.Context, args map[string]any) string {
			basePath := stringArg(args, "base_path")
			if basePath == "" {
				basePath = defaultBasePath
			}
			return patch.Apply(stringArg(args, "patch"), patch.Options{
				BasePath:   basePath,
				Filesystem: store,
			})
		},
	}
}
