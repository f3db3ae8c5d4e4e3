// Package render — PDF renderer.
// Renders the canonical Markdown document as a styled PDF using gofpdf:
// headings get scaled fonts, comment bullets keep their tree indentation,
// code blocks inside comment bodies render monospaced.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/redditrip/core"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer renders a Thread as a PDF document.
type PDFRenderer struct {
	markdown *MarkdownRenderer
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{markdown: NewMarkdownRenderer()}
}

// Render builds the canonical Markdown for the thread and typesets it.
func (r *PDFRenderer) Render(thread *core.Thread) ([]byte, error) {
	md, err := r.markdown.Render(thread)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Source line above the document body.
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, "Source: "+thread.Post.URL, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	lines := strings.Split(string(md), "\n")
	inCodeBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Fenced code blocks inside comment bodies.
		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}
		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, line, "", "L", true)
			continue
		}

		if trimmed == "" {
			pdf.Ln(3)
			continue
		}

		if strings.HasPrefix(line, "#") {
			level := 0
			for _, ch := range line {
				if ch != '#' {
					break
				}
				level++
			}
			renderHeading(pdf, strings.TrimSpace(strings.TrimLeft(line, "# ")), level)
			continue
		}

		// Comment bullets: preserve tree indentation in the page margin.
		if strings.HasPrefix(trimmed, "- ") {
			depth := (len(line) - len(strings.TrimLeft(line, " "))) / len(indentUnit)
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetLeftMargin(10 + float64(depth)*5)
			pdf.MultiCell(0, 5, "• "+cleanInlineMarkdown(trimmed[2:]), "", "L", false)
			pdf.SetLeftMargin(10)
			continue
		}

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, cleanInlineMarkdown(trimmed), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(2)
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	// Italic markers, but not apostrophes inside words.
	text = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`).ReplaceAllString(text, " $1 ")
	// Inline code markers.
	text = regexp.MustCompile("`([^`]+)`").ReplaceAllString(text, "$1")
	// Link syntax, keeping the text.
	text = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`).ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
