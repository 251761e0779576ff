// Package ocr defines text extraction from images of source code.
package ocr

import (
	"context"
	"regexp"
	"strings"
)

// Result is the outcome of one extraction.
type Result struct {
	Text         string  `json:"text"`
	Success      bool    `json:"success"`
	Confidence   float64 `json:"confidence"` // 0.0 to 1.0
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// Failed returns an unsuccessful result.
func Failed(msg string) Result {
	return Result{Success: false, ErrorMessage: msg}
}

// Extractor turns an image into text.
type Extractor interface {
	// ExtractText never returns an error: failures are reported in the Result.
	ExtractText(ctx context.Context, image []byte, contentType string) Result

	// Available reports whether the engine is installed and usable.
	Available(ctx context.Context) bool

	// Status is a one-line human-readable description of the engine state.
	Status(ctx context.Context) string
}

// IsImage reports whether contentType is an image MIME type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

var (
	inlineSpaceRE = regexp.MustCompile(`[ \t]+`)
	keywordRE     = regexp.MustCompile(`\b(public|private|protected|void|int|class|if|for|while)\b`)
)

// CleanText normalises raw OCR output: line endings become \n, runs of
// blanks inside a line collapse to one space, indentation is re-derived as
// two spaces per two leading blanks (at most 8 levels), and blank lines are
// dropped.
func CleanText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(inlineSpaceRE.ReplaceAllString(line, " "))
		if trimmed == "" {
			continue
		}
		leading := len(line) - len(strings.TrimLeft(line, " \t"))
		b.WriteString(strings.Repeat("  ", min(leading/2, 8)))
		b.WriteString(trimmed)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// Confidence scores how code-like text looks, from 0.5 up to 1.0.
// Empty text scores 0.
func Confidence(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	score := 0.5
	if strings.Contains(text, "{") && strings.Contains(text, "}") {
		score += 0.2
	}
	if strings.Contains(text, "(") && strings.Contains(text, ")") {
		score += 0.1
	}
	if strings.Contains(text, ";") {
		score += 0.1
	}
	if keywordRE.MatchString(text) {
		score += 0.1
	}
	return min(score, 1.0)
}
