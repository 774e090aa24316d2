package trackfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriterPrepareAndWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "export")
	writer := NewWriter(dir)
	if err := writer.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	path, err := writer.Write("42_Morning Run.gpx", []byte("<gpx>first</gpx>"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, "42_Morning Run.gpx") {
		t.Fatalf("unexpected path %q", path)
	}

	if _, err := writer.Write("42_Morning Run.gpx", []byte("<gpx/>")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "<gpx/>" {
		t.Fatalf("expected overwritten content, got %q", data)
	}
}

func TestWriterFailsWithoutParentDirectory(t *testing.T) {
	writer := NewWriter(t.TempDir())
	if _, err := writer.Write(filepath.Join("missing", "a.gpx"), []byte("x")); err == nil {
		t.Fatal("expected error when parent directory is missing")
	}
}

func TestWriterPrepareRequiresDir(t *testing.T) {
	if err := NewWriter("  ").Prepare(); err == nil {
		t.Fatal("expected error for empty export directory")
	}
}
