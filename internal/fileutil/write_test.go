package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "out.flextext")

	if err := WriteFileAtomic(path, []byte("first"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	// Overwrite replaces the whole file
	if err := WriteFileAtomic(path, []byte("second"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content mismatch: got %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestWriteFileAtomic_CreateDir(t *testing.T) {
	tempDir := t.TempDir()

	// Write into nested directory that doesn't exist
	path := filepath.Join(tempDir, "nested", "deep", "out.txt")
	if err := WriteFileAtomic(path, []byte("test"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestWriteFileAtomic_Unwritable(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// A regular file where a directory is needed
	if err := WriteFileAtomic(filepath.Join(blocker, "out.txt"), []byte("x"), 0644); err == nil {
		t.Error("expected error when parent is a file")
	}
}
