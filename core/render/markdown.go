// Package render provides output renderers for the redditrip pipeline.
// This file implements the Markdown renderer, the canonical format:
// a fixed header for the post followed by one block per comment,
// indented two spaces per depth level. Scores, timestamps and ids are
// deliberately left out to keep the token overhead low for LLM use.
package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/redditrip/core"
)

// indentUnit is repeated depth times in front of each comment block.
const indentUnit = "  "

// MarkdownRenderer renders a Thread as a single Markdown document.
// It is a pure function of its input: the same tree renders to
// byte-identical output every time.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render emits the header block, then a depth-first pre-order walk of the
// comment forest. The post-content section is omitted for link posts and
// the comments section for comment-less threads.
func (r *MarkdownRenderer) Render(thread *core.Thread) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", thread.Post.Title)
	fmt.Fprintf(&b, "**Original Post:** %s\n\n", thread.Post.URL)
	fmt.Fprintf(&b, "**Subreddit:** r/%s\n", thread.Post.Subreddit)

	if thread.Post.Body != "" {
		fmt.Fprintf(&b, "\n## Post Content\n\n%s\n", thread.Post.Body)
	}

	if len(thread.Comments) > 0 {
		b.WriteString("\n## Comments\n\n")
		for _, c := range thread.Comments {
			writeComment(&b, c)
		}
	}

	return []byte(strings.TrimRight(b.String(), "\n") + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// writeComment emits one comment block and recurses into its children
// before moving to the next sibling. Multi-line bodies stay aligned under
// their bullet so the list structure survives.
func writeComment(b *strings.Builder, c *core.CommentNode) {
	indent := strings.Repeat(indentUnit, c.Depth)

	lines := strings.Split(c.Body, "\n")
	fmt.Fprintf(b, "%s- **%s**: %s\n", indent, c.Author, lines[0])
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(b, "%s%s%s\n", indent, indentUnit, line)
	}

	for _, child := range c.Children {
		writeComment(b, child)
	}
}
