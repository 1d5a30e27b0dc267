// Package ingestion normalizes résumé text before it is stored or sent to a model.
package ingestion

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// MaxResumeBytes bounds the stored résumé text. Only a prefix is ever sent to
// the model, but the full text is kept for later sessions.
const MaxResumeBytes = 200_000

var (
	// ErrEmptyResume is returned when nothing is left after cleaning
	ErrEmptyResume = errors.New("resume text is empty")
	// ErrResumeTooLarge is returned when the cleaned text exceeds MaxResumeBytes
	ErrResumeTooLarge = fmt.Errorf("resume text exceeds %d bytes", MaxResumeBytes)
)

var (
	innerSpace  = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	blankLines  = regexp.MustCompile(`\n\n\n+`)
	bulletGlyph = regexp.MustCompile(`^[•·▪●◦‣∙]\s*`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = stripControl(content)

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	// Preserve headings (Markdown # or ## etc.)
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	// Résumés pasted from PDFs use assorted bullet glyphs; rewrite them as "- "
	if bulletGlyph.MatchString(trimmed) {
		trimmed = "- " + bulletGlyph.ReplaceAllString(trimmed, "")
	}

	// Keep indentation for nested bullets, collapse runs of spaces elsewhere
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	content := innerSpace.ReplaceAllString(trimmed, " ")
	if indent > 0 && isBulletLine(content) {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}

// stripControl drops control characters other than newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}

// NormalizeResume cleans pasted résumé text and enforces the size bounds.
func NormalizeResume(raw string) (string, *Metadata, error) {
	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", nil, ErrEmptyResume
	}
	if len(cleaned) > MaxResumeBytes {
		return "", nil, ErrResumeTooLarge
	}
	return cleaned, NewMetadata(cleaned, "text"), nil
}

// IngestFromFile reads a plain-text résumé, cleans it, and returns cleaned text with metadata
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleaned, meta, err := NormalizeResume(string(content))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	meta.Source = path
	return cleaned, meta, nil
}
