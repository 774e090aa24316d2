package trackfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer stores GPX payloads below a fixed export directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Prepare creates the export directory. It runs once before an export.
func (w *Writer) Prepare() error {
	if strings.TrimSpace(w.dir) == "" {
		return fmt.Errorf("export directory not configured")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create export directory %q: %w", w.dir, err)
	}
	return nil
}

// Path joins a resolved template with the export directory.
func (w *Writer) Path(rel string) string {
	return filepath.Join(w.dir, rel)
}

// Write stores data verbatim at rel below the export directory, replacing
// any existing file, and returns the path written.
func (w *Writer) Write(rel string, data []byte) (string, error) {
	target := w.Path(rel)
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open track file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write track file %s: %w", target, err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("sync track file %s: %w", target, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close track file %s: %w", target, err)
	}
	return target, nil
}
