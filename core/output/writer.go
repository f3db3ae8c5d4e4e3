// Package output handles file naming and writing for redditrip outputs.
// Filenames are derived from the post: reddit_{title}_{subreddit}.ext,
// with both parts slugged to snake_case.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/redditrip/core"
)

// DefaultDir is where outputs land unless overridden.
const DefaultDir = "output"

// maxSlugLen caps each filename component.
const maxSlugLen = 100

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory, creating it
// if needed. An empty outputDir falls back to DefaultDir.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		outputDir = DefaultDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{OutputDir: outputDir}, nil
}

// Write persists rendered data for the thread and returns the path.
func (w *Writer) Write(thread *core.Thread, data []byte, ext string) (string, error) {
	name := fmt.Sprintf("reddit_%s_%s", Slug(thread.Post.Title), Slug(thread.Post.Subreddit))
	path := filepath.Join(w.OutputDir, name+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Slug converts text to a snake_case filename component: invalid filename
// characters are dropped, runs of whitespace and hyphens collapse to a
// single underscore, everything is lowercased and capped in length.
func Slug(text string) string {
	var b strings.Builder
	pendingSep := false

	for _, ch := range text {
		switch {
		case unicode.IsSpace(ch) || ch == '-':
			pendingSep = true
		case unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(ch))
		default:
			// Punctuation and filesystem-hostile characters are dropped.
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return strings.Trim(slug, "_")
}
