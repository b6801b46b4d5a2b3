// Package editor implements an atomic multi-edit engine: a batch of literal
// find/replace operations validated as a whole against a single file, then
// applied in order and written back only when every edit succeeds.
package editor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glasshouse/diffagent/pkg/fsio"
)

// Edit is one literal replacement within a batch. An empty OldString on the
// first edit of a batch targeting a missing file means "create the file".
type Edit struct {
	OldString  string
	NewString  string
	ReplaceAll bool
}

// MultiEdit applies edits to the file at path on the local filesystem. See
// Apply for the full contract.
func MultiEdit(path string, edits []Edit) string {
	return Apply(path, edits, fsio.OS())
}

// Apply validates the whole batch against the file's original content, then
// applies the edits strictly in order against the evolving content. The file
// is written back (or created) only after every edit applies cleanly; any
// failure before that point leaves the file untouched. The return value is a
// human-readable summary in both the success and failure cases.
func Apply(path string, edits []Edit, store fsio.Store) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			summary = fmt.Sprintf("error during multi-edit: %v", r)
		}
	}()

	if len(edits) == 0 {
		return "error: at least one edit operation is required"
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	if strings.HasSuffix(path, ".ipynb") {
		return "error: editing Jupyter notebook files is not supported"
	}

	exists := store.Exists(path)
	content := ""
	if exists {
		binary, err := store.IsBinary(path)
		if err != nil {
			return fmt.Sprintf("error: failed to inspect file: %v", err)
		}
		if binary {
			return "error: cannot edit binary file"
		}

		content, err = store.ReadText(path)
		if err != nil {
			if errors.Is(err, fsio.ErrNotText) {
				return "error: cannot read file - possibly binary or encoding issue"
			}
			return fmt.Sprintf("error: failed to read file: %v", err)
		}

		// Pre-validation checks every old_string against the ORIGINAL content.
		// An edit whose target only exists after a prior edit runs will pass
		// here and fail (or succeed) at apply time instead.
		for i, edit := range edits {
			if edit.OldString != "" && !strings.Contains(content, edit.OldString) {
				return fmt.Sprintf("error: edit %d: string to replace not found in file: %q", i+1, truncate(edit.OldString, 100))
			}
		}
	} else {
		if edits[0].OldString != "" {
			return "error: for a new file, the first edit's old_string must be empty"
		}
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := store.MakeDirs(parent); err != nil {
				return fmt.Sprintf("error: failed to create parent directory: %v", err)
			}
		}
	}

	for i, edit := range edits {
		if edit.OldString == edit.NewString {
			return fmt.Sprintf("error: edit %d: old_string and new_string must differ", i+1)
		}
	}

	modified := content
	occurrences := make([]int, 0, len(edits))
	for i, edit := range edits {
		if edit.ReplaceAll {
			count := strings.Count(modified, edit.OldString)
			modified = strings.ReplaceAll(modified, edit.OldString, edit.NewString)
			occurrences = append(occurrences, count)
			continue
		}
		if !strings.Contains(modified, edit.OldString) {
			return fmt.Sprintf("edit %d failed: string not found: %s", i+1, truncate(edit.OldString, 50))
		}
		modified = strings.Replace(modified, edit.OldString, edit.NewString, 1)
		occurrences = append(occurrences, 1)
	}

	if err := store.WriteText(path, modified); err != nil {
		return fmt.Sprintf("error writing file: %v", err)
	}

	verb := "updated"
	if !exists {
		verb = "created"
	}
	lines := make([]string, 0, len(edits)+1)
	lines = append(lines, fmt.Sprintf("successfully %s %s with %d edit(s)", verb, path, len(edits)))
	for i, count := range occurrences {
		lines = append(lines, fmt.Sprintf("edit %d: replaced %d occurrence(s)", i+1, count))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
