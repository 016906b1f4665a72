// Package markdown normalises Markdown files by stripping formatting.
package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".md", ".markdown", ".mdown"}
}

var (
	codeBlocks    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode    = regexp.MustCompile("`[^`]+`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquotes   = regexp.MustCompile(`(?m)^>\s*`)
	horizontals   = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	bulletMarkers = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberMarkers = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
)

// Normalise strips common Markdown formatting and collapses whitespace.
// This is a simplified conversion that handles the common cases; exotic
// constructs degrade to their literal text.
func (n *Normaliser) Normalise(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", domain.ErrInvalidInput
	}

	text := string(content)
	text = codeBlocks.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "")
	text = images.ReplaceAllString(text, "")
	text = links.ReplaceAllString(text, "$1")
	text = headings.ReplaceAllString(text, "")
	text = blockquotes.ReplaceAllString(text, "")
	text = horizontals.ReplaceAllString(text, "")
	text = bulletMarkers.ReplaceAllString(text, "")
	text = numberMarkers.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "_", " ")

	return strings.Join(strings.Fields(text), " "), nil
}
