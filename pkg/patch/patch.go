package patch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glasshouse/diffagent/pkg/fsio"
)

// FileResult describes the outcome for a single file when applying a patch.
// Hunk indices are 1-based to match how diffs are discussed in error reports.
type FileResult struct {
	Path         string
	Success      bool
	Message      string
	AppliedHunks []int
	FailedHunks  []int
}

// Options configure how a patch is resolved and applied.
type Options struct {
	// BasePath anchors relative file paths. When empty, relative paths are
	// resolved against the process working directory.
	BasePath string
	// Filesystem is the store patched files are read from and written to.
	// Nil selects the OS filesystem.
	Filesystem fsio.Store
}

// ApplyPatch parses patchText and applies it to the local filesystem,
// resolving relative paths against basePath. It returns a human-readable
// summary and never panics; the tool surface is text-in/text-out.
func ApplyPatch(patchText, basePath string) string {
	return Apply(patchText, Options{BasePath: basePath})
}

// Apply parses patchText and applies every file change in document order.
// One file failing does not prevent the remaining files from being
// attempted. Any unexpected internal fault is converted into a one-line
// error string rather than propagated.
func Apply(patchText string, opts Options) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			summary = fmt.Sprintf("error applying patch: %v", r)
		}
	}()

	if strings.TrimSpace(patchText) == "" {
		return "error: patch text is empty"
	}

	changes := Parse(patchText)
	if len(changes) == 0 {
		return "error: no file changes found in patch text"
	}

	store := opts.Filesystem
	if store == nil {
		store = fsio.OS()
	}

	results := make([]FileResult, 0, len(changes))
	for _, change := range changes {
		target := resolveTarget(change.Path, opts.BasePath)
		results = append(results, applyToFile(store, target, change.Hunks))
	}

	return renderSummary(results)
}

// resolveTarget computes the on-disk path for a file change. Absolute paths
// win; relative paths are joined onto basePath when supplied (stripping any
// leading separator first) and absolutized against the working directory
// otherwise.
func resolveTarget(path, basePath string) string {
	if !filepath.IsAbs(path) && basePath != "" {
		base := basePath
		if !filepath.IsAbs(base) {
			if abs, err := filepath.Abs(base); err == nil {
				base = abs
			}
		}
		return filepath.Join(base, strings.TrimLeft(path, "/"))
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func applyToFile(store fsio.Store, path string, hunks []Hunk) FileResult {
	if !store.Exists(path) {
		return createFile(store, path, hunks)
	}

	content, err := store.ReadText(path)
	if err != nil {
		if errors.Is(err, fsio.ErrNotText) {
			return FileResult{Path: path, Message: "cannot read file - possibly binary or encoding issue"}
		}
		return FileResult{Path: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	// Every hunk is attempted even after a failure so the report names all
	// offenders, but a single failure discards the whole file's write.
	doc := NewDocument(content)
	var applied, failed []int
	for index, hunk := range hunks {
		if doc.Apply(hunk) {
			applied = append(applied, index+1)
		} else {
			failed = append(failed, index+1)
		}
	}

	if len(failed) > 0 {
		return FileResult{
			Path:         path,
			Message:      fmt.Sprintf("hunks %s failed to apply", formatIndices(failed)),
			AppliedHunks: applied,
			FailedHunks:  failed,
		}
	}

	if err := store.WriteText(path, doc.String()); err != nil {
		return FileResult{Path: path, Message: fmt.Sprintf("failed to write file: %v", err), AppliedHunks: applied}
	}
	return FileResult{
		Path:         path,
		Success:      true,
		Message:      fmt.Sprintf("applied %d hunk(s)", len(applied)),
		AppliedHunks: applied,
	}
}

// createFile synthesizes a new file purely from the insert lines of the
// patch, in hunk and line order, with no trailing newline.
func createFile(store fsio.Store, path string, hunks []Hunk) FileResult {
	if parent := filepath.Dir(path); parent != "" && parent != "." {
		if err := store.MakeDirs(parent); err != nil {
			return FileResult{Path: path, Message: fmt.Sprintf("failed to create parent directory: %v", err)}
		}
	}

	var inserted []string
	for _, hunk := range hunks {
		for _, op := range hunk.Lines {
			if op.Kind == LineInsert {
				inserted = append(inserted, op.Text)
			}
		}
	}

	// An empty final insert line would otherwise leave a trailing newline.
	content := strings.TrimSuffix(strings.Join(inserted, "\n"), "\n")
	if err := store.WriteText(path, content); err != nil {
		return FileResult{Path: path, Message: fmt.Sprintf("failed to write file: %v", err)}
	}
	return FileResult{Path: path, Success: true, Message: "created file"}
}

func renderSummary(results []FileResult) string {
	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}

	lines := make([]string, 0, len(results)+1)
	lines = append(lines, fmt.Sprintf("%d/%d files succeeded", succeeded, len(results)))
	for _, result := range results {
		marker := "✓"
		if !result.Success {
			marker = "✗"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", marker, result.Path, result.Message))
	}
	return strings.Join(lines, "\n")
}

func formatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, index := range indices {
		parts[i] = fmt.Sprintf("%d", index)
	}
	return strings.Join(parts, ", ")
}
