package osfilesystem

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()

	// Nested path exercises parent directory creation
	testPath := filepath.Join(t.TempDir(), "out", "clip.layout.json")
	testData := []byte(`{"policy":"overlay"}`)

	if err := fs.WriteFile(testPath, testData); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestFileSystem_MkdirAllAndExists(t *testing.T) {
	fs := New()
	tmpDir := t.TempDir()

	testPath := filepath.Join(tmpDir, "a", "b", "c")
	if err := fs.MkdirAll(testPath); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected directory to exist")
	}

	exists, err = fs.Exists(filepath.Join(tmpDir, "nonexistent.mp4"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected file to not exist")
	}
}

func TestFileSystem_Remove(t *testing.T) {
	fs := New()

	testPath := filepath.Join(t.TempDir(), "old.mp4")
	if err := os.WriteFile(testPath, []byte("stale"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := fs.Remove(testPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	exists, _ := fs.Exists(testPath)
	if exists {
		t.Error("expected file to be removed")
	}
}

func TestFileSystem_ReadDir(t *testing.T) {
	fs := New()
	tmpDir := t.TempDir()

	for _, name := range []string{"b.mov", "a.mov", ".DS_Store", "c.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "sub.mov"), 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	names, err := fs.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	want := []string{"a.mov", "b.mov", "c.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}

	if _, err := fs.ReadDir(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
