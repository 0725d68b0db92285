package organizer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FallbackCategory receives every file whose extension matches no category.
const FallbackCategory = "Others"

// Category is a named destination folder owning a set of extensions.
type Category struct {
	Name       string
	Extensions []string
}

// Table maps file extensions to categories. It is immutable once built.
type Table struct {
	categories []Category
	byExt      map[string]string
	fallback   string
}

// NewTable builds a Table from the given categories. Extensions are lowercased
// and given a leading dot when missing. When two categories list the same
// extension the earlier one wins.
func NewTable(categories []Category) (*Table, error) {
	t := &Table{
		categories: make([]Category, 0, len(categories)),
		byExt:      make(map[string]string),
		fallback:   FallbackCategory,
	}

	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category name is empty")
		}
		if name == t.fallback {
			return nil, fmt.Errorf("category %q is reserved for unmatched files", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = true

		exts := make([]string, 0, len(c.Extensions))
		for _, ext := range c.Extensions {
			ext = normalizeExt(ext)
			if ext == "" {
				continue
			}
			exts = append(exts, ext)
			if _, taken := t.byExt[ext]; !taken {
				t.byExt[ext] = name
			}
		}
		t.categories = append(t.categories, Category{Name: name, Extensions: exts})
	}

	return t, nil
}

// DefaultTable returns the stock category table.
func DefaultTable() *Table {
	t, err := NewTable([]Category{
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".tiff"}},
		{Name: "Videos", Extensions: []string{".mp4", ".mkv", ".avi", ".mov", ".flv", ".wmv"}},
		{Name: "Audio", Extensions: []string{".mp3", ".wav", ".aac", ".flac", ".m4a"}},
		{Name: "Documents", Extensions: []string{".pdf", ".docx", ".doc", ".xlsx", ".pptx", ".txt", ".csv"}},
		{Name: "Executables", Extensions: []string{".exe", ".msi"}},
		{Name: "Compressed", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz"}},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Classify returns the category for a file name. Only the final extension is
// considered and comparison is case-insensitive.
func (t *Table) Classify(name string) string {
	_, ext := splitExt(name)
	ext = strings.ToLower(ext)
	if ext == "" {
		return t.fallback
	}
	if category, ok := t.byExt[ext]; ok {
		return category
	}
	return t.fallback
}

// Fallback returns the name of the catch-all category.
func (t *Table) Fallback() string {
	return t.fallback
}

// Categories returns a copy of the configured categories in lookup order,
// followed by the fallback.
func (t *Table) Categories() []Category {
	out := make([]Category, 0, len(t.categories)+1)
	for _, c := range t.categories {
		exts := make([]string, len(c.Extensions))
		copy(exts, c.Extensions)
		out = append(out, Category{Name: c.Name, Extensions: exts})
	}
	return append(out, Category{Name: t.fallback})
}

// splitExt splits name into base and extension. Leading dots belong to the
// base, so ".bashrc" has no extension.
func splitExt(name string) (base, ext string) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return name, ""
	}
	trimmed := strings.TrimLeft(name, ".")
	ext = filepath.Ext(trimmed)
	return strings.TrimSuffix(name, ext), ext
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
