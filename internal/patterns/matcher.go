package patterns

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIgnorePatterns covers in-progress downloads and editor temp files.
// Dotfiles are sorted like any other file.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.crdownload",
		"*.part",
		"*.partial",
		"*.download",
		"*.tmp",
		"~$*",
	}
}

// Matcher decides which files the organizer leaves alone. It is immutable
// once built and safe for concurrent use.
type Matcher struct {
	ignorePatterns []glob.Glob
}

// NewMatcher compiles the given ignore patterns. Blank lines and lines
// starting with '#' are skipped.
func NewMatcher(ignore []string) (*Matcher, error) {
	compiled, err := Compile(ignore)
	if err != nil {
		return nil, err
	}
	return &Matcher{ignorePatterns: compiled}, nil
}

// Compile turns pattern strings into globs, reporting the first invalid one.
func Compile(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}

		// Normalize pattern: use forward slashes
		pattern = filepath.ToSlash(pattern)

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// IsIgnored checks if a path or its base name matches any ignore pattern.
func (m *Matcher) IsIgnored(path string) bool {
	normalizedPath := filepath.ToSlash(path)
	base := filepath.Base(path)

	for _, pattern := range m.ignorePatterns {
		if pattern.Match(base) {
			return true
		}
		if pattern.Match(normalizedPath) {
			return true
		}
	}

	return false
}

// Len returns the number of active ignore patterns.
func (m *Matcher) Len() int {
	return len(m.ignorePatterns)
}
