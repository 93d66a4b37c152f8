// Package sink provides output destinations for generated schemas.
package sink

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrInvalidPath marks a rejected output path.
var ErrInvalidPath = errors.New("invalid output path")

// OutputSink receives generated file content.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to the slash-separated relative path.
	// The sink determines the actual location.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes below a directory on the local filesystem.
// Each file is written to a temporary file first and renamed into place,
// so readers never observe a partial schema.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode
}

// NewFilesystemSink creates a new FilesystemSink writing to the specified root directory.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644}
}

// WriteFile writes content to p within the root directory, creating parent
// directories as needed.
func (s *FilesystemSink) WriteFile(ctx context.Context, p string, content []byte) error {
	if err := ValidatePath(p); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(p))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(dir, ".magickxsd-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()

	// On failure the temp file is removed on a best-effort basis.
	fail := func(err error, msg string) error {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, msg)
	}

	if writeErr != nil {
		return fail(writeErr, "write temp file")
	}
	if closeErr != nil {
		return fail(closeErr, "close temp file")
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fail(err, "set file mode")
	}
	if err := ctx.Err(); err != nil {
		return fail(err, "write canceled")
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fail(err, "rename temp file")
	}
	return nil
}

// MemorySink stores generated files in memory.
// All operations are thread-safe.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under p.
func (s *MemorySink) WriteFile(ctx context.Context, p string, content []byte) error {
	if err := ValidatePath(p); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = slices.Clone(content)
	return nil
}

// Get returns a copy of the content at p, or nil if nothing was written there.
func (s *MemorySink) Get(p string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files[p])
}

// Paths returns the written paths in sorted order.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Len returns the number of stored files.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// ValidatePath checks that p is a clean, slash-separated relative path
// that stays below the sink root.
func ValidatePath(p string) error {
	invalid := func(reason string) error {
		return errors.Mark(errors.Newf("%s: %q", reason, p), ErrInvalidPath)
	}

	switch {
	case p == "":
		return invalid("path is empty")
	case strings.Contains(p, `\`):
		return invalid("path must use forward slashes")
	case strings.HasPrefix(p, "/") || filepath.IsAbs(p) || hasDriveLetter(p):
		return invalid("absolute paths not allowed")
	case slices.Contains(strings.Split(p, "/"), ".."):
		return invalid("path traversal not allowed")
	case path.Clean(p) != p:
		return invalid("path is not clean")
	}
	return nil
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0] | 0x20
	return c >= 'a' && c <= 'z'
}
