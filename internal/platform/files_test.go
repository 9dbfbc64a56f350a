package platform

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestEnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/downloads/videos"

	if err := EnsureDir(fs, dir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	exists, err := afero.DirExists(fs, dir)
	if err != nil || !exists {
		t.Fatalf("Directory was not created: %s", dir)
	}

	// Second call must not fail
	if err := EnsureDir(fs, dir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/downloads"
	if err := afero.WriteFile(fs, path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := EnsureDir(fs, path); err == nil {
		t.Error("Expected error when a file occupies the directory path")
	}
}

func TestCheckWritable(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/downloads"
	if err := EnsureDir(fs, dir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if err := CheckWritable(fs, dir); err != nil {
		t.Fatalf("Expected writable directory, got %v", err)
	}

	// The probe must not survive the check
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("Failed to list directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected probe to be removed, found %d entries", len(entries))
	}
}

func TestCheckWritable_ReadOnly(t *testing.T) {
	base := afero.NewMemMapFs()
	dir := "/downloads"
	if err := EnsureDir(base, dir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	fs := afero.NewReadOnlyFs(base)
	if err := CheckWritable(fs, dir); err == nil {
		t.Error("Expected error for read-only filesystem")
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"My Great Video!", "my-great-video"},
		{"  spaced   out  ", "spaced-out"},
		{"Ünïcode & symbols: test?", "ünïcode-symbols-test"},
		{"???", "fallback"},
		{"", "fallback"},
		{"already-safe", "already-safe"},
	}

	for _, test := range tests {
		if got := SafeFileName(test.title, "fallback"); got != test.expected {
			t.Errorf("SafeFileName(%q) = %q, expected %q", test.title, got, test.expected)
		}
	}
}

func TestSafeFileName_UsableAsPath(t *testing.T) {
	name := SafeFileName("Some: Video / Title", "video")
	joined := filepath.Join("/downloads", name+".mp4")
	if filepath.Dir(joined) != "/downloads" {
		t.Errorf("Slug leaked a path separator: %s", joined)
	}
}
