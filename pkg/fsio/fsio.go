// Package fsio abstracts the whole-file read/write primitives used by the
// patch and editor packages. The core logic only ever needs a byte-addressable
// store with four operations, so tests and embedders can swap the OS-backed
// implementation for the in-memory one.
package fsio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// binarySniffBytes is the window inspected for null bytes when deciding
// whether a file is binary.
const binarySniffBytes = 1024

// ErrNotText is returned by ReadText when the file content is not valid
// UTF-8 encoded text.
var ErrNotText = errors.New("fsio: content is not valid text")

// Store is the filesystem collaborator consumed by the patch orchestrator and
// the multi-edit engine.
type Store interface {
	// Exists reports whether a file is present at path.
	Exists(path string) bool
	// ReadText returns the full text content of the file. It fails with an
	// error wrapping ErrNotText when the content does not decode as UTF-8.
	ReadText(path string) (string, error)
	// WriteText replaces the file content, creating the file if needed.
	WriteText(path, content string) error
	// MakeDirs creates the directory at path along with any missing parents.
	MakeDirs(path string) error
	// IsBinary reports whether the file looks binary (null byte within the
	// first kilobyte).
	IsBinary(path string) (bool, error)
}

// OS returns a Store backed by the local filesystem.
func OS() Store {
	return osStore{}
}

type osStore struct{}

func (osStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osStore) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrNotText, path)
	}
	return string(data), nil
}

func (osStore) WriteText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (osStore) MakeDirs(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func (osStore) IsBinary(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	chunk := make([]byte, binarySniffBytes)
	n, err := file.Read(chunk)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return bytes.IndexByte(chunk[:n], 0) != -1, nil
}

// Memory is a map-backed Store used by tests and in-memory embeddings. Paths
// are cleaned before use so lookups are stable regardless of separators.
type Memory struct {
	files map[string]string
	dirs  map[string]struct{}
}

// NewMemory builds an in-memory store seeded with the provided files. The map
// is copied before use.
func NewMemory(files map[string]string) *Memory {
	snapshot := make(map[string]string, len(files))
	for path, content := range files {
		snapshot[filepath.Clean(path)] = content
	}
	return &Memory{files: snapshot, dirs: make(map[string]struct{})}
}

// Files returns a copy of the current file map.
func (m *Memory) Files() map[string]string {
	snapshot := make(map[string]string, len(m.files))
	for path, content := range m.files {
		snapshot[path] = content
	}
	return snapshot
}

func (m *Memory) Exists(path string) bool {
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

func (m *Memory) ReadText(path string) (string, error) {
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return "", fmt.Errorf("failed to read %s: %w", path, fs.ErrNotExist)
	}
	if !utf8.ValidString(content) {
		return "", fmt.Errorf("%w: %s", ErrNotText, path)
	}
	return content, nil
}

func (m *Memory) WriteText(path, content string) error {
	m.files[filepath.Clean(path)] = content
	return nil
}

func (m *Memory) MakeDirs(path string) error {
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if cleaned == "" || cleaned == "." {
		return nil
	}
	m.dirs[cleaned] = struct{}{}
	return nil
}

func (m *Memory) IsBinary(path string) (bool, error) {
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return false, fmt.Errorf("failed to open %s: %w", path, fs.ErrNotExist)
	}
	limit := len(content)
	if limit > binarySniffBytes {
		limit = binarySniffBytes
	}
	return strings.IndexByte(content[:limit], 0) != -1, nil
}
