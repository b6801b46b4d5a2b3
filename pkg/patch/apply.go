package patch

import "strings"

// Document holds file content as a line sequence plus a single
// "ends with newline" bit. Tracking the bit once per file, instead of once
// per hunk, keeps a multi-hunk pass from gaining or losing the final newline
// depending on which hunk happens to run last.
type Document struct {
	lines           []string
	trailingNewline bool
}

// NewDocument splits content on newlines. A trailing newline is recorded and
// its phantom empty element dropped so hunks only ever match real lines.
func NewDocument(content string) *Document {
	lines := strings.Split(content, "\n")
	trailing := false
	if content != "" && strings.HasSuffix(content, "\n") {
		trailing = true
		lines = lines[:len(lines)-1]
	}
	return &Document{lines: lines, trailingNewline: trailing}
}

// String renders the document back to text, restoring the trailing newline
// recorded at construction time.
func (d *Document) String() string {
	content := strings.Join(d.lines, "\n")
	if d.trailingNewline {
		content += "\n"
	}
	return content
}

// Apply attempts to apply one hunk in place. Matching is positional and
// exact: every context and delete line must equal the target line byte for
// byte, with no trimming and no offset search. On any mismatch the document
// is left untouched and false is returned.
func (d *Document) Apply(hunk Hunk) bool {
	insertion := hunk.OldStart - 1
	if insertion < 0 {
		return false
	}

	matchCount := 0
	for _, op := range hunk.Lines {
		if op.Kind == LineContext || op.Kind == LineDelete {
			matchCount++
		}
	}
	if insertion+matchCount > len(d.lines) {
		return false
	}

	cursor := insertion
	for _, op := range hunk.Lines {
		if op.Kind != LineContext && op.Kind != LineDelete {
			continue
		}
		actual := ""
		if cursor < len(d.lines) {
			actual = d.lines[cursor]
		}
		if actual != op.Text {
			return false
		}
		cursor++
	}

	rebuilt := make([]string, 0, len(d.lines)+len(hunk.Lines))
	rebuilt = append(rebuilt, d.lines[:insertion]...)
	cursor = insertion
	for _, op := range hunk.Lines {
		switch op.Kind {
		case LineContext:
			if cursor < len(d.lines) {
				rebuilt = append(rebuilt, d.lines[cursor])
			}
			cursor++
		case LineDelete:
			cursor++
		case LineInsert:
			rebuilt = append(rebuilt, op.Text)
		}
	}
	if cursor < len(d.lines) {
		rebuilt = append(rebuilt, d.lines[cursor:]...)
	}

	d.lines = rebuilt
	return true
}

// ApplyHunk applies a single hunk to content. It never fails with an error:
// a context mismatch returns the original content unchanged with ok=false so
// a failed hunk can never corrupt partial state.
func ApplyHunk(content string, hunk Hunk) (string, bool) {
	doc := NewDocument(content)
	if !doc.Apply(hunk) {
		return content, false
	}
	return doc.String(), true
}
