package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

const writeProbeName = ".mediapull-probe"

var (
	unsafeChars    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	collapseDashes = regexp.MustCompile(`[\s-]+`)
)

// EnsureDir creates the directory if it does not exist yet.
func EnsureDir(fs afero.Fs, dir string) error {
	info, err := fs.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	return fs.MkdirAll(dir, DefaultDirPermissions)
}

// CheckWritable verifies the directory accepts writes by creating and
// removing a probe file. Run once before any worker starts so an unwritable
// destination is discovered up front, not mid-transfer.
func CheckWritable(fs afero.Fs, dir string) error {
	probe := filepath.Join(dir, writeProbeName)
	f, err := fs.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	f.Close()
	return fs.Remove(probe)
}

// SafeFileName converts a remote title into a filesystem-safe slug:
// punctuation stripped, whitespace runs collapsed to single dashes,
// lowercased. Empty results fall back to the provided default.
func SafeFileName(title, fallback string) string {
	slug := unsafeChars.ReplaceAllString(title, "")
	slug = strings.ToLower(strings.TrimSpace(slug))
	slug = collapseDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fallback
	}
	return slug
}
