package patch

import "testing"

func TestParseSingleFileSingleHunk(t *testing.T) {
	text := "--- a/f\n+++ b/f\n@@ -1,3 +1,3 @@\n line1\n-line2\n+new2\n line3"
	changes := Parse(text)
	if len(changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(changes))
	}
	change := changes[0]
	if change.Path != "f" {
		t.Fatalf("expected path %q, got %q", "f", change.Path)
	}
	if len(change.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(change.Hunks))
	}

	hunk := change.Hunks[0]
	if hunk.OldStart != 1 || hunk.OldCount != 3 || hunk.NewStart != 1 || hunk.NewCount != 3 {
		t.Fatalf("unexpected hunk header: %+v", hunk)
	}

	want := []LineOp{
		{Kind: LineContext, Text: "line1"},
		{Kind: LineDelete, Text: "line2"},
		{Kind: LineInsert, Text: "new2"},
		{Kind: LineContext, Text: "line3"},
	}
	if len(hunk.Lines) != len(want) {
		t.Fatalf("expected %d line ops, got %d", len(want), len(hunk.Lines))
	}
	for i, op := range hunk.Lines {
		if op != want[i] {
			t.Fatalf("line op %d: expected %+v, got %+v", i, want[i], op)
		}
	}
}

func TestParseCountDefaultsToOne(t *testing.T) {
	text := "--- a/f\n+++ b/f\n@@ -5 +5 @@\n-old\n+new\n"
	changes := Parse(text)
	if len(changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(changes))
	}
	hunk := changes[0].Hunks[0]
	if hunk.OldStart != 5 || hunk.OldCount != 1 || hunk.NewStart != 5 || hunk.NewCount != 1 {
		t.Fatalf("unexpected hunk header: %+v", hunk)
	}
}

func TestParsePrefersNewSidePath(t *testing.T) {
	text := "--- a/old/name.go\n+++ b/new/name.go\n@@ -1 +1 @@\n-x\n+y\n"
	changes := Parse(text)
	if len(changes) != 1 || changes[0].Path != "new/name.go" {
		t.Fatalf("expected new-side path, got %+v", changes)
	}
}

func TestParseCreationFallsBackToNewPath(t *testing.T) {
	text := "--- /dev/null\n+++ b/created.txt\n@@ -0,0 +1,2 @@\n+a\n+b\n"
	changes := Parse(text)
	if len(changes) != 1 || changes[0].Path != "created.txt" {
		t.Fatalf("expected created.txt, got %+v", changes)
	}
}

func TestParseDeletionFallsBackToOldPath(t *testing.T) {
	text := "--- a/doomed.txt\n+++ /dev/null\n@@ -1,2 +0,0 @@\n-a\n-b\n"
	changes := Parse(text)
	if len(changes) != 1 || changes[0].Path != "doomed.txt" {
		t.Fatalf("expected doomed.txt, got %+v", changes)
	}
}

func TestParseBothSidesSentinelSkipped(t *testing.T) {
	text := "--- /dev/null\n+++ /dev/null\n@@ -1 +1 @@\n-a\n+b\n"
	if changes := Parse(text); len(changes) != 0 {
		t.Fatalf("expected no file changes, got %+v", changes)
	}
}

func TestParseStripsTimestampSuffix(t *testing.T) {
	text := "--- a/f.txt\t2024-01-01 00:00:00\n+++ b/f.txt\t2024-01-02 00:00:00\n@@ -1 +1 @@\n-x\n+y\n"
	changes := Parse(text)
	if len(changes) != 1 || changes[0].Path != "f.txt" {
		t.Fatalf("expected f.txt, got %+v", changes)
	}
}

func TestParseMultipleFilesKeepOrder(t *testing.T) {
	text := "--- a/first\n+++ b/first\n@@ -1 +1 @@\n-a\n+b\n" +
		"--- a/second\n+++ b/second\n@@ -1 +1 @@\n-c\n+d\n"
	changes := Parse(text)
	if len(changes) != 2 {
		t.Fatalf("expected 2 file changes, got %d", len(changes))
	}
	if changes[0].Path != "first" || changes[1].Path != "second" {
		t.Fatalf("unexpected order: %q, %q", changes[0].Path, changes[1].Path)
	}
}

func TestParseMultipleHunksPerFile(t *testing.T) {
	text := "--- a/f\n+++ b/f\n" +
		"@@ -1,2 +1,2 @@\n line1\n-line2\n+two\n" +
		"@@ -10,2 +10,2 @@\n line10\n-line11\n+eleven\n"
	changes := Parse(text)
	if len(changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(changes))
	}
	if len(changes[0].Hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(changes[0].Hunks))
	}
	if changes[0].Hunks[1].OldStart != 10 {
		t.Fatalf("expected second hunk at line 10, got %d", changes[0].Hunks[1].OldStart)
	}
}

func TestParseNoNewlineMarkerDiscarded(t *testing.T) {
	text := "--- a/f\n+++ b/f\n@@ -1 +1 @@\n-old\n+new\n\\ No newline at end of file\n"
	changes := Parse(text)
	if len(changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(changes))
	}
	for _, op := range changes[0].Hunks[0].Lines {
		if op.Kind != LineDelete && op.Kind != LineInsert {
			t.Fatalf("marker line leaked into hunk body: %+v", op)
		}
	}
}

func TestParseEmptyBodyLineIsBlankContext(t *testing.T) {
	text := "--- a/f\n+++ b/f\n@@ -1,3 +1,3 @@\n line1\n\n-line3\n+three\n"
	changes := Parse(text)
	if len(changes) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(changes))
	}
	ops := changes[0].Hunks[0].Lines
	if len(ops) != 4 {
		t.Fatalf("expected 4 line ops, got %d", len(ops))
	}
	if ops[1].Kind != LineContext || ops[1].Text != "" {
		t.Fatalf("expected blank context, got %+v", ops[1])
	}
}

func TestParseMissingNewHeaderAbandonsBlock(t *testing.T) {
	text := "--- a/orphan\nunrelated\n--- a/real\n+++ b/real\n@@ -1 +1 @@\n-x\n+y\n"
	changes := Parse(text)
	if len(changes) != 1 || changes[0].Path != "real" {
		t.Fatalf("expected only the well-formed block, got %+v", changes)
	}
}

func TestParseBackToBackHeadersNotLost(t *testing.T) {
	// The abandoned `--- ` line is immediately followed by a valid pair; the
	// scanner must not skip past it.
	text := "--- a/orphan\n--- a/real\n+++ b/real\n@@ -1 +1 @@\n-x\n+y\n"
	changes := Parse(text)
	if len(changes) != 1 || changes[0].Path != "real" {
		t.Fatalf("expected the second header pair to parse, got %+v", changes)
	}
}

func TestParseZeroHunkFileDropped(t *testing.T) {
	text := "--- a/empty\n+++ b/empty\n--- a/real\n+++ b/real\n@@ -1 +1 @@\n-x\n+y\n"
	changes := Parse(text)
	if len(changes) != 1 || changes[0].Path != "real" {
		t.Fatalf("expected hunk-less file to be dropped, got %+v", changes)
	}
}

func TestParseGarbageInput(t *testing.T) {
	if changes := Parse("this is not a diff\nat all\n"); len(changes) != 0 {
		t.Fatalf("expected no file changes, got %+v", changes)
	}
	if changes := Parse(""); len(changes) != 0 {
		t.Fatalf("expected no file changes for empty input, got %+v", changes)
	}
}

func TestParseRepeatedPathsStaySeparate(t *testing.T) {
	text := "--- a/f\n+++ b/f\n@@ -1 +1 @@\n-a\n+b\n" +
		"--- a/f\n+++ b/f\n@@ -3 +3 @@\n-c\n+d\n"
	changes := Parse(text)
	if len(changes) != 2 {
		t.Fatalf("expected 2 separate entries for repeated path, got %d", len(changes))
	}
}
