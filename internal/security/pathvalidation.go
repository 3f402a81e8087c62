// Package security guards file names that arrive over the API.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves outside its base directory.
var ErrPathEscape = errors.New("path escapes base directory")

// canonical resolves symlinks on the longest existing prefix of abs, so a
// not-yet-created file under a symlinked directory is still resolved.
func canonical(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rel, _ := filepath.Rel(dir, abs)
			return filepath.Join(resolved, rel)
		}
		if filepath.Dir(dir) == dir {
			return abs
		}
	}
}

// ValidatePathWithinDirectory fails if filePath, after cleaning and symlink
// resolution, is not inside baseDir.
func ValidatePathWithinDirectory(filePath, baseDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	base, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(base, canonical(absPath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathEscape, filePath, baseDir)
	}
	return nil
}

// ResolveWithin joins a client supplied relative name onto baseDir and
// returns the result if it stays inside baseDir.
func ResolveWithin(baseDir, name string) (string, error) {
	if name == "" {
		return "", errors.New("empty file name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: absolute name %q", ErrPathEscape, name)
	}
	p := filepath.Join(baseDir, name)
	if err := ValidatePathWithinDirectory(p, baseDir); err != nil {
		return "", err
	}
	return p, nil
}

// SanitizeFilename makes a safe file name stem from an arbitrary string such
// as an uploaded file name. Characters other than ASCII letters, digits,
// dot, underscore and dash become a single underscore, and the result is
// capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
