// Package patch provides helpers for parsing and applying unified-diff patches.
//
// The package understands the textual format produced by `git diff` and
// friends: `---`/`+++` file headers, `@@ -n,c +n,c @@` hunk headers, and body
// lines prefixed with ' ', '-', '+', or '\'. Parsing is lenient (malformed
// sections are skipped rather than rejected) while application is strict:
// every context and delete line must match the target byte for byte, and a
// hunk either applies completely or leaves the content untouched.
package patch
