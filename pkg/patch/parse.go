package patch

import (
	"regexp"
	"strconv"
	"strings"
)

// noFileSentinel is the conventional placeholder path meaning "this side of
// the diff does not exist" (file creation or deletion).
const noFileSentinel = "/dev/null"

// LineKind identifies the role of a single hunk body line.
type LineKind byte

const (
	// LineContext anchors the hunk without changing the file.
	LineContext LineKind = ' '
	// LineDelete removes the matched line from the file.
	LineDelete LineKind = '-'
	// LineInsert adds a new line to the file.
	LineInsert LineKind = '+'
)

// LineOp is one body line of a hunk in document order.
type LineOp struct {
	Kind LineKind
	Text string
}

// Hunk captures one `@@ -oldStart,oldCount +newStart,newCount @@` block.
// Start positions are 1-based line numbers into the respective file versions.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []LineOp
}

// FileChange groups the hunks targeting a single file. Path is the new-side
// path of the diff, falling back to the old side for deletions-to-recreate.
type FileChange struct {
	Path  string
	Hunks []Hunk
}

var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse converts unified-diff text into an ordered list of file changes.
//
// Parse never fails: unparseable input yields an empty slice, which callers
// surface as "no file changes found". Hunks keep their source order, files
// keep first-appearance order, and repeated paths stay separate entries so
// they are applied sequentially downstream.
func Parse(patchText string) []FileChange {
	lines := strings.Split(patchText, "\n")
	// A trailing newline in the patch text yields a phantom empty element
	// that would otherwise be read as a blank context line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	var changes []FileChange

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], "--- ") {
			i++
			continue
		}

		oldPath := cleanHeaderPath(lines[i][4:], "a/")
		i++
		if i >= len(lines) || !strings.HasPrefix(lines[i], "+++ ") {
			// Abandon the block; the offending line is re-scanned so an
			// immediately following header pair is not lost.
			continue
		}
		newPath := cleanHeaderPath(lines[i][4:], "b/")
		i++

		path := newPath
		if path == noFileSentinel {
			path = oldPath
		}
		if path == noFileSentinel {
			// Both sides absent: deletion-to-nothing is unsupported.
			continue
		}

		var hunks []Hunk
		for i < len(lines) {
			line := lines[i]
			if strings.HasPrefix(line, "--- ") {
				break
			}
			if !strings.HasPrefix(line, "@@ ") {
				i++
				continue
			}

			header := hunkHeaderPattern.FindStringSubmatch(line)
			if header == nil {
				i++
				continue
			}
			hunk := Hunk{
				OldStart: mustAtoi(header[1]),
				OldCount: atoiDefault(header[2], 1),
				NewStart: mustAtoi(header[3]),
				NewCount: atoiDefault(header[4], 1),
			}
			i++

		body:
			for i < len(lines) {
				line := lines[i]
				if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "@@ ") {
					break
				}
				if strings.HasPrefix(line, "\\") {
					// "\ No newline at end of file" carries no content.
					i++
					continue
				}
				switch {
				case strings.HasPrefix(line, " "):
					hunk.Lines = append(hunk.Lines, LineOp{Kind: LineContext, Text: line[1:]})
				case strings.HasPrefix(line, "-"):
					hunk.Lines = append(hunk.Lines, LineOp{Kind: LineDelete, Text: line[1:]})
				case strings.HasPrefix(line, "+"):
					hunk.Lines = append(hunk.Lines, LineOp{Kind: LineInsert, Text: line[1:]})
				case line == "":
					hunk.Lines = append(hunk.Lines, LineOp{Kind: LineContext, Text: ""})
				default:
					// Unrecognized content terminates the hunk body and is left
					// for the outer scan.
					break body
				}
				i++
			}
			hunks = append(hunks, hunk)
		}

		if len(hunks) > 0 {
			changes = append(changes, FileChange{Path: path, Hunks: hunks})
		}
	}

	return changes
}

// cleanHeaderPath strips the diff-tool conventions from a `---`/`+++` header
// value: surrounding whitespace, the a/ or b/ prefix, and the tab-separated
// timestamp suffix historically emitted by diff.
func cleanHeaderPath(raw, prefix string) string {
	path := strings.TrimSpace(raw)
	path = strings.TrimPrefix(path, prefix)
	if tab := strings.IndexByte(path, '\t'); tab != -1 {
		path = path[:tab]
	}
	return path
}

func mustAtoi(value string) int {
	n, _ := strconv.Atoi(value)
	return n
}

func atoiDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
